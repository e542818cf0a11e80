package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	json "github.com/goccy/go-json"

	formwork "github.com/quharo/formwork"
	"github.com/quharo/formwork/formdef"
	"github.com/quharo/formwork/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "check":
		checkCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "formwork CLI\n\nUsage:\n  formwork check -f form.yaml\n  formwork validate -f form.yaml -values values.json [-lang en|ja]\n  formwork schema -f form.yaml [-o schema.json]\n\nNotes:\n  - check compiles a form definition and reports problems.\n  - validate runs the definition's rules against a JSON value document.\n  - schema exports the definition as JSON Schema.")
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var file string
	fs.StringVar(&file, "f", "", "form definition file (YAML or JSON)")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}

	def, diag := loadDefinition(file)
	if _, _, err := def.Configs(); err != nil {
		fatalf("check: %v", err)
	}
	for _, w := range diag.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Printf("%s: %d fields ok\n", def.Name, len(def.Fields))
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var file, valuesFile, lang string
	fs.StringVar(&file, "f", "", "form definition file (YAML or JSON)")
	fs.StringVar(&valuesFile, "values", "", "JSON document with the values to validate")
	fs.StringVar(&lang, "lang", "en", "message language (en/ja)")
	_ = fs.Parse(args)
	if file == "" || valuesFile == "" {
		fs.Usage()
		os.Exit(2)
	}
	i18n.SetLanguage(lang)

	def, diag := loadDefinition(file)
	for _, w := range diag.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	c := formwork.New()
	if _, err := def.Register(c); err != nil {
		fatalf("validate: %v", err)
	}

	raw, err := os.ReadFile(valuesFile)
	if err != nil {
		fatalf("validate: read values: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		fatalf("validate: parse values: %v", err)
	}
	values := make(map[string]any)
	for key, v := range formwork.Flatten(doc) {
		if c.Registered(key) {
			values[key] = c.CoerceValue(key, v)
		} else {
			fmt.Fprintf(os.Stderr, "warning: ignoring unknown key %q\n", key)
		}
	}
	if len(values) > 0 {
		if err := c.Patch(values); err != nil {
			fatalf("validate: %v", err)
		}
	}

	if c.Validate() {
		fmt.Printf("%s: valid\n", def.Name)
		return
	}
	msgs := c.State().ErrorMessages()
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, msgs[k])
	}
	os.Exit(1)
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var file, out string
	fs.StringVar(&file, "f", "", "form definition file (YAML or JSON)")
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}

	def, _ := loadDefinition(file)
	data, err := json.MarshalIndent(def.JSONSchema(), "", "  ")
	if err != nil {
		fatalf("schema: %v", err)
	}
	data = append(data, '\n')
	if out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatalf("schema: write: %v", err)
	}
}

func loadDefinition(file string) (formdef.Definition, formdef.Diag) {
	raw, err := os.ReadFile(file)
	if err != nil {
		fatalf("read definition: %v", err)
	}
	def, diag, err := formdef.Load(raw)
	if err != nil {
		fatalf("%v", err)
	}
	return def, diag
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
