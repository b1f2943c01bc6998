// Command consumergraph tails the Kafka __consumer_offsets topic and serves
// the live topic to consumer-group mapping over HTTP.
//
// Usage:
//
//	consumergraph -c consumergraph.properties
//	consumergraph probe -c consumergraph.properties
//	consumergraph decode 0001000262310006...
//	consumergraph version
package main

import (
	"os"

	"github.com/consumergraph/consumergraph/cmd/consumergraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
