// Command hotelcrm manages the hotel brokerage CRM database.
package main

import "github.com/mesh-intelligence/hotelcrm/internal/cli"

func main() {
	cli.Execute()
}
