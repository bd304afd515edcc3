// querygate — security interception gateway for NL2SQL pipelines.
// Sits between natural-language query intent and SQL execution:
// intent classification, sensitive-field scanning, role-based
// permission checks, and fail-closed SQL rewriting.
package main

import "github.com/acinsight/querygate/internal/cli"

func main() {
	cli.Execute()
}
