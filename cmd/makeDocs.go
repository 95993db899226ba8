/*
Copyright © 2021 Sentry

Generate static documentation of the scenario format
*/
package cmd

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/getsentry/go-dlist/scenario"
)

const DocFileName = "docs/Scenarios.md"

type FieldDefinition struct {
	FieldName     string
	Documentation string
}

type StructDefinition struct {
	TypeName      string
	Documentation string
	Fields        []FieldDefinition
}

var makeDocsParams struct {
	sourceDirectory string
}

// documentedTypes maps the scenario types written in scenario files to their documented name
var documentedTypes = map[string]string{"scenarioRaw": "Scenario", "Step": "Step"}

var makeDocs = &cobra.Command{
	Use:   "update-docs",
	Short: "Extract the scenario format docs from source code into a static file.",
	Long:  `Creates docs/Scenarios.md describing scenario files, operations and error names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msgf("Creating %s", DocFileName)
		return updateScenarioDocument()
	},
}

func updateScenarioDocument() error {
	dirName := "."
	if len(makeDocsParams.sourceDirectory) != 0 {
		dirName = makeDocsParams.sourceDirectory
	}
	definitions, err := extractStructDefinitions(filepath.Join(dirName, "scenario", "main.go"), documentedTypes)
	if err != nil {
		log.Error().Err(err).Msg("Error trying to extract structure definitions from code")
		return err
	}

	_ = os.Mkdir("docs", os.ModePerm)
	f, err := os.Create(DocFileName)
	if err != nil {
		log.Error().Err(err).Msgf("Could not create %s", DocFileName)
		return err
	}
	defer func() { _ = f.Close() }()
	return writeTemplate(f, definitions)
}

const scenarioTemplate = `# Scenario files

Scenario files are yaml (or json when the file ends in .json) and are run with
` + "`go-dlist scenario FILE...`" + `.
{{range .Types}}
## {{.TypeName}}

{{.Documentation}}
{{range .Fields}}- **{{.FieldName}}** {{.Documentation}}
{{end}}{{end}}
## Operations

Operation names are case-insensitive.
{{range .Operations}}
- ` + "`{{.}}`" + `{{end}}

## Error names

Names usable in ` + "`expectError`" + `.
{{range .ErrorNames}}
- ` + "`{{.}}`" + `{{end}}
`

func writeTemplate(outStream io.Writer, definitions []StructDefinition) error {
	t, err := template.New("scenarios").Parse(scenarioTemplate)
	if err != nil {
		log.Error().Err(err).Msg("Could not parse embedded scenario template")
		return err
	}

	data := struct {
		Types      []StructDefinition
		Operations []string
		ErrorNames []string
	}{
		Types:      definitions,
		Operations: scenario.Operations(),
		ErrorNames: scenario.ErrorNames(),
	}

	if err = t.Execute(outStream, data); err != nil {
		log.Error().Err(err).Msg("Error executing scenario template")
		return err
	}
	return nil
}

// extractStructDefinitions returns the definitions of the structures named in
// typeNames (renamed to the map value), in the order they are declared in fileName
func extractStructDefinitions(fileName string, typeNames map[string]string) ([]StructDefinition, error) {
	fset := token.NewFileSet()
	src, err := os.ReadFile(fileName)
	if err != nil {
		log.Error().Err(err).Msgf("Could not read file %s", fileName)
		return nil, err
	}
	parsedFile, err := parser.ParseFile(fset, fileName, src, parser.ParseComments)
	if err != nil {
		log.Error().Err(err).Msgf("Could not parse file %s", fileName)
		return nil, err
	}

	var retVal []StructDefinition
	for _, decl := range parsedFile.Decls {
		typeSpec, ok := getStructTypeSpec(decl)
		if !ok {
			continue
		}
		if name, wanted := typeNames[typeSpec.TypeName]; wanted {
			typeSpec.TypeName = name
			retVal = append(retVal, *typeSpec)
		}
	}
	return retVal, nil
}

// getStructTypeSpec returns the StructDefinition from a Decl if that Decl is a GenDecl of a struct type
func getStructTypeSpec(decl ast.Decl) (*StructDefinition, bool) {
	genDecl, ok := decl.(*ast.GenDecl)
	if !ok || genDecl.Tok != token.TYPE || len(genDecl.Specs) != 1 {
		return nil, false
	}
	typeSpec, ok := genDecl.Specs[0].(*ast.TypeSpec)
	if !ok {
		return nil, false
	}
	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok {
		return nil, false
	}

	var fieldsDoc []FieldDefinition
	if structType.Fields != nil {
		fieldsDoc = make([]FieldDefinition, 0, len(structType.Fields.List))
		for _, field := range structType.Fields.List {
			fieldDef := getFieldDefinition(field)
			if fieldDef != nil {
				fieldsDoc = append(fieldsDoc, *fieldDef)
			}
		}
	}

	return &StructDefinition{
		TypeName:      typeSpec.Name.Name,
		Documentation: strings.TrimSpace(getDoc(genDecl.Doc, false)),
		Fields:        fieldsDoc,
	}, true
}

// getFieldDefinition documents a field under the name it has in yaml files,
// fields without a yaml tag are skipped
func getFieldDefinition(field *ast.Field) *FieldDefinition {
	if field == nil || field.Tag == nil {
		return nil
	}
	tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
	name, _, _ := strings.Cut(tag.Get("yaml"), ",")
	if len(name) == 0 || name == "-" {
		return nil
	}
	return &FieldDefinition{
		FieldName:     name,
		Documentation: strings.TrimSpace(getDoc(field.Doc, true)),
	}
}

func getDoc(comments *ast.CommentGroup, noNewLine bool) string {
	sep := "\n"
	if noNewLine {
		sep = " "
	}

	if comments == nil {
		return ""
	}
	allComments := make([]string, 0, len(comments.List))
	for _, comment := range comments.List {
		text := comment.Text
		if strings.HasPrefix(text, "//") {
			// line comment
			allComments = append(allComments, strings.TrimPrefix(text[2:], " ")+sep)
		} else {
			// block style comment
			allComments = append(allComments, text)
		}
	}
	return strings.Join(allComments, "")
}

func init() {
	makeDocs.Flags().StringVar(&makeDocsParams.sourceDirectory, "source-dir", "", "directory for source files (omit if current directory)")
	rootCmd.AddCommand(makeDocs)
}
