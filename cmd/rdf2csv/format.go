package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jward/rdf2csv"
)

var validFormats = []string{"json", "text"}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// outputResult writes result to stdout in the selected format.
func (a *app) outputResult(result CLIResult) error {
	if a.flagFormat == "text" {
		return outputResultText(a.stdout, result)
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func (a *app) outputError(command string, err error) error {
	a.errorHandled = true
	if a.flagFormat == "text" {
		fmt.Fprintf(a.stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

// outputResultText dispatches to the text formatter for the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIConversion:
		formatConversionText(w, v)
	case rdf2csv.Description:
		formatDescriptionText(w, v)
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case string:
		fmt.Fprintln(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// formatConversionText prints the success message and a short summary.
func formatConversionText(w io.Writer, c CLIConversion) {
	fmt.Fprintln(w, c.Message)
	fmt.Fprintf(w, "%d rows, %d columns from %d quads", c.Rows, len(c.Columns), c.Stats.Quads)
	if c.Stats.Warnings > 0 {
		fmt.Fprintf(w, " (%d warnings)", c.Stats.Warnings)
	}
	fmt.Fprintln(w)
}

// formatDescriptionText formats a mapping description as aligned sections.
func formatDescriptionText(w io.Writer, d rdf2csv.Description) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Subject template:\t%s\n", d.SubjectTemplate)
	fmt.Fprintf(tw, "Term type:\t%s\n", d.TermType)
	fmt.Fprintf(tw, "Subject columns:\t%s\n", strings.Join(d.SubjectColumns, ", "))
	if len(d.Classes) > 0 {
		fmt.Fprintf(tw, "Classes:\t%s\n", strings.Join(d.Classes, ", "))
	}
	fmt.Fprintf(tw, "Predicates:\t%d\n", len(d.Predicates))
	if d.SkippedJoins > 0 {
		fmt.Fprintf(tw, "Skipped joins:\t%d\n", d.SkippedJoins)
	}
	tw.Flush()

	if len(d.DatatypeMap) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PREDICATE\tDATATYPE")
		keys := make([]string, 0, len(d.DatatypeMap))
		for k := range d.DatatypeMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(tw, "%s\t%s\n", k, d.DatatypeMap[k])
		}
		tw.Flush()
	}

	if len(d.ObjectTemplates) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PREDICATE\tTEMPLATE\tCOLUMNS")
		for _, ot := range d.ObjectTemplates {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ot.Predicate, ot.Template, strings.Join(ot.Placeholders, ", "))
		}
		tw.Flush()
	}
}
