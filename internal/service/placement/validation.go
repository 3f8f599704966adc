package placement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cardshelf/internal/config"
	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var defaultCardContent = json.RawMessage(`[]`)

func invalid(format string, args ...any) error {
	return &domain.ValidationError{Message: fmt.Sprintf(format, args...)}
}

// normalizeFolderName trims name and checks it against the folder name rules
func normalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.RuneLength(1, config.MaxFolderNameLength),
	)
	if err != nil {
		return "", invalid("name: %v", err)
	}
	return name, nil
}

func normalizeCardTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	err := validation.Validate(title,
		validation.Required.Error("card title is required"),
		validation.RuneLength(1, config.MaxCardTitleLength),
	)
	if err != nil {
		return "", invalid("title: %v", err)
	}
	return title, nil
}

// contentPresent reports whether a request carried a content value; JSON null counts as absent
func contentPresent(content json.RawMessage) bool {
	trimmed := bytes.TrimSpace(content)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// normalizeContent defaults missing content to an empty document
func normalizeContent(content json.RawMessage) (json.RawMessage, error) {
	if !contentPresent(content) {
		return defaultCardContent, nil
	}
	if len(content) > config.MaxCardContentBytes {
		return nil, invalid("content: exceeds %d bytes", config.MaxCardContentBytes)
	}
	if !json.Valid(content) {
		return nil, invalid("content: must be valid JSON")
	}
	return content, nil
}

// validateID rejects ids that could never name a row
func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return invalid("%s: must be a valid UUID", field)
	}
	return nil
}

// normalizeOptionalID treats an empty string as "no id"
func normalizeOptionalID(field string, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if err := validateID(field, *id); err != nil {
		return nil, err
	}
	v := *id
	return &v, nil
}

// validateReorderBatch checks a reorder batch before any row is touched
func validateReorderBatch(items []models.FolderOrder) error {
	err := validation.Validate(items, validation.Length(0, config.MaxReorderBatch))
	if err != nil {
		return invalid("folders: %v", err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if err := validateID(fmt.Sprintf("folders[%d].id", i), item.ID); err != nil {
			return err
		}
		if item.Order < 0 {
			return invalid("folders[%d].order: must not be negative", i)
		}
		if _, dup := seen[item.ID]; dup {
			return invalid("folders[%d].id: duplicate folder %s", i, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
