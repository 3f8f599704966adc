// Command shelfctl is the operator CLI: schema migrations, fixture seeding,
// tree inspection and dev token minting.
package main

func main() {
	Execute()
}
