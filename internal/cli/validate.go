package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/metaskema/manifest"
	"github.com/reoring/metaskema/schema"
)

// NewValidateCommand validates documents against a type.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate JSON or YAML documents against a type",
		Long: `Validate JSON or YAML documents against a type declared in the manifest.

Files ending in .json are decoded as JSON; anything else is read as a
(possibly multi-document) YAML stream. "-" reads standard input.

Examples:
  metaskema validate -m types.yaml -t User user.json
  metaskema validate -m types.yaml -t User --abort-early=false users.yaml
  cat user.json | metaskema validate -m types.yaml -t User -`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
	cmd.Flags().Bool("no-cache", false, "compile the type without the schema cache")
	cmd.Flags().Bool("convert", true, "convert numeric, boolean and date strings")
	cmd.Flags().Bool("allow-unknown", false, "accept undeclared keys")
	cmd.Flags().Bool("abort-early", true, "stop at the first issue of each document")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	okColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed, color.Bold)

	failed := 0
	for _, path := range args {
		docs, err := readDocuments(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		for i, doc := range docs {
			name := path
			if len(docs) > 1 {
				name = fmt.Sprintf("%s#%d", path, i+1)
			}
			res := e.reg.Validate(e.key, doc, e.callOptions()...)
			if res.Error == nil {
				okColor.Fprintf(out, "ok   %s\n", name)
				continue
			}
			failed++
			failColor.Fprintf(out, "FAIL %s\n", name)
			iss, isIssues := schema.AsIssues(res.Error)
			if !isIssues {
				return res.Error
			}
			printIssues(out, iss)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed validation", failed)
	}
	return nil
}

func printIssues(w io.Writer, iss schema.Issues) {
	pathColor := color.New(color.FgYellow)
	codeColor := color.New(color.FgCyan)
	for _, it := range iss {
		fmt.Fprint(w, "  ")
		pathColor.Fprintf(w, "%-20s", it.Path)
		fmt.Fprint(w, " ")
		codeColor.Fprintf(w, "%-18s", it.Code)
		fmt.Fprintf(w, " %s\n", it.Message)
	}
}

func readDocuments(stdin io.Reader, path string) ([]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var docs []any
		for {
			var v any
			if err := dec.Decode(&v); err != nil {
				if errors.Is(err, io.EOF) {
					return docs, nil
				}
				return nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
			docs = append(docs, v)
		}
	}
	docs, err := manifest.NewDocumentReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return docs, nil
}
