// cmd/tools/node-schema/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rynko-workers/internal/common/validation"
	"rynko-workers/pkg/registry"
)

func main() {
	printCmd := flag.NewFlagSet("print", flag.ExitOnError)
	schemaCmd := flag.NewFlagSet("schema", flag.ExitOnError)
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Print command flags
	printOut := printCmd.String("out", "", "Write to this file instead of stdout")

	// Schema command flags
	schemaNode := schemaCmd.String("node", registry.NodeRynko, "Node name")
	schemaItems := schemaCmd.Bool("items", false, "Wrap the parameters in a job variables schema with items")

	// Check command flags
	checkPath := checkCmd.String("path", "configs/nodes.json", "Path to a node descriptions file")

	// Validate command flags
	validateNode := validateCmd.String("node", registry.NodeRynko, "Node name")
	validateParams := validateCmd.String("params", "", "Path to a JSON file with node parameters")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "print":
		_ = printCmd.Parse(os.Args[2:])
		if err := printNodes(*printOut); err != nil {
			fmt.Printf("Error writing node descriptions: %v\n", err)
			os.Exit(1)
		}

	case "schema":
		_ = schemaCmd.Parse(os.Args[2:])
		node, ok := registry.Lookup(*schemaNode)
		if !ok {
			fmt.Printf("Error: unknown node %s\n", *schemaNode)
			os.Exit(1)
		}
		schema := registry.JSONSchema(node, registry.SchemaOptions{Enums: true, Items: *schemaItems})
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(schema)

	case "check":
		_ = checkCmd.Parse(os.Args[2:])
		if err := checkNodes(*checkPath); err != nil {
			fmt.Printf("Node descriptions check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Node descriptions match the built-in registry.")

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		if *validateParams == "" {
			fmt.Println("Error: params is required for validate.")
			validateCmd.Usage()
			os.Exit(1)
		}
		problems, err := validateParameters(*validateNode, *validateParams)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Printf("  - %s\n", p)
			}
			os.Exit(1)
		}
		fmt.Println("Parameters are valid.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func printNodes(path string) error {
	if path == "" {
		return registry.WriteJSON(os.Stdout, registry.All())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := registry.WriteJSON(f, registry.All()); err != nil {
		return err
	}
	fmt.Printf("Wrote %d node descriptions to %s\n", len(registry.All()), path)
	return nil
}

// checkNodes compares a published descriptions file with the compiled
// registry so stale exports are caught in CI.
func checkNodes(path string) error {
	nodes, err := registry.LoadNodes(path)
	if err != nil {
		return fmt.Errorf("failed to load node descriptions: %w", err)
	}

	seen := make(map[string]bool)
	for _, n := range nodes {
		if n.Name == "" {
			return fmt.Errorf("node missing required field: name")
		}
		if seen[n.Name] {
			return fmt.Errorf("duplicate node name: %s", n.Name)
		}
		seen[n.Name] = true

		want, ok := registry.Lookup(n.Name)
		if !ok {
			return fmt.Errorf("unknown node: %s", n.Name)
		}
		got, _ := json.Marshal(n)
		expected, _ := json.Marshal(want)
		if string(got) != string(expected) {
			return fmt.Errorf("node %s is out of date, re-run print", n.Name)
		}
	}

	for _, n := range registry.All() {
		if !seen[n.Name] {
			return fmt.Errorf("node %s is missing", n.Name)
		}
	}
	return nil
}

func validateParameters(nodeName, paramsPath string) ([]string, error) {
	node, ok := registry.Lookup(nodeName)
	if !ok {
		return nil, fmt.Errorf("unknown node %s", nodeName)
	}

	data, err := os.ReadFile(paramsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read params: %w", err)
	}
	var params map[string]interface{}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("params must be a JSON object: %w", err)
	}

	schema := registry.JSONSchema(node, registry.SchemaOptions{})
	result, err := validation.ValidateDocument(schema, params)
	if err != nil {
		return nil, err
	}
	problems := result.GetErrorMessages()
	return append(problems, registry.ValidateParameters(node, params)...), nil
}

func help() {
	fmt.Print(`
Usage: node-schema <command> [flags]

Commands:
  print     Write all node and credential descriptions as JSON
  schema    Print the JSON schema of a node's parameters
  check     Compare a descriptions file with the built-in registry
  validate  Validate node parameters from a JSON file
  help      Show this help message

Examples:
  node-schema print -out configs/nodes.json
  node-schema schema -node rynko -items
  node-schema check -path configs/nodes.json
  node-schema validate -node rynko -params params.json

Use 'node-schema <command> -h' for more information about a command.
` + "\n")
}
