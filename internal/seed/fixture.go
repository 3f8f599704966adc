// Package seed loads YAML fixtures describing a user's folder tree and cards
// and applies them through the placement service.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	placementSvc "cardshelf/internal/domain/services/placement"

	"gopkg.in/yaml.v3"
)

// Fixture is the root of a seed file
type Fixture struct {
	UserID  string   `yaml:"user_id"`
	Folders []Folder `yaml:"folders"`
	Cards   []Card   `yaml:"cards"` // uncategorized
}

// Folder is a folder with its nested folders and cards
type Folder struct {
	Name     string   `yaml:"name"`
	Children []Folder `yaml:"children"`
	Cards    []Card   `yaml:"cards"`
}

// Card is a card to create
type Card struct {
	Title   string      `yaml:"title"`
	Content interface{} `yaml:"content"` // any YAML value, stored as JSON
	Starred bool        `yaml:"starred"`
}

// Summary counts what Apply created
type Summary struct {
	Folders int
	Cards   int
}

// Load decodes a fixture, rejecting unknown keys
func Load(r io.Reader) (*Fixture, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var fixture Fixture
	if err := decoder.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fixture, nil
}

// Apply creates the fixture's folders and cards for userID, parents before children.
// It stops at the first error; already created rows stay.
func Apply(ctx context.Context, svc placementSvc.PlacementService, userID string, fixture *Fixture, logger *slog.Logger) (*Summary, error) {
	if userID == "" {
		return nil, fmt.Errorf("seed: user id is required")
	}

	s := &seeder{svc: svc, userID: userID, summary: &Summary{}}
	for _, f := range fixture.Folders {
		if err := s.createFolder(ctx, nil, f); err != nil {
			return s.summary, err
		}
	}
	if err := s.createCards(ctx, nil, fixture.Cards); err != nil {
		return s.summary, err
	}

	logger.Info("seed applied",
		"user_id", userID,
		"folders", s.summary.Folders,
		"cards", s.summary.Cards,
	)
	return s.summary, nil
}

type seeder struct {
	svc     placementSvc.PlacementService
	userID  string
	summary *Summary
}

func (s *seeder) createFolder(ctx context.Context, parentID *string, f Folder) error {
	folder, err := s.svc.CreateFolder(ctx, s.userID, &placementSvc.CreateFolderRequest{
		Name:     f.Name,
		ParentID: parentID,
	})
	if err != nil {
		return fmt.Errorf("seed folder %q: %w", f.Name, err)
	}
	s.summary.Folders++

	for _, child := range f.Children {
		if err := s.createFolder(ctx, &folder.ID, child); err != nil {
			return err
		}
	}
	return s.createCards(ctx, &folder.ID, f.Cards)
}

func (s *seeder) createCards(ctx context.Context, folderID *string, cards []Card) error {
	for _, c := range cards {
		var content json.RawMessage
		if c.Content != nil {
			raw, err := json.Marshal(c.Content)
			if err != nil {
				return fmt.Errorf("seed card %q content: %w", c.Title, err)
			}
			content = raw
		}

		card, err := s.svc.CreateCard(ctx, s.userID, &placementSvc.CreateCardRequest{
			Title:    c.Title,
			Content:  content,
			FolderID: folderID,
		})
		if err != nil {
			return fmt.Errorf("seed card %q: %w", c.Title, err)
		}
		if c.Starred {
			if _, err := s.svc.ToggleStar(ctx, s.userID, card.ID); err != nil {
				return fmt.Errorf("star card %q: %w", c.Title, err)
			}
		}
		s.summary.Cards++
	}
	return nil
}
