// Package render formats registry records and statistics for terminals.
package render

import (
	"fmt"
	"gomata/pkg/domain"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	recordRule = 50
	bannerRule = 60
)

// Label turns a snake_case field name into a Title Case label.
func Label(key string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(key, "_", " "))
}

// Banner writes the interactive session header.
func Banner(w io.Writer) {
	rule := strings.Repeat("=", bannerRule)
	fmt.Fprintf(w, "\n%s\n    GOMATA ADHAAR SYSTEM - CATTLE IDENTIFICATION\n    Professional Cattle ID Management System\n%s\n", rule, rule)
}

// Record writes every field of rec in insertion order, or a not-found line.
func Record(w io.Writer, rec domain.Record, found bool) {
	if !found {
		fmt.Fprintln(w, "Cattle not found!")
		return
	}
	rule := strings.Repeat("=", recordRule)
	fmt.Fprintf(w, "\n%s\nGOMATA ADHAAR - CATTLE INFORMATION\n%s\n", rule, rule)
	for _, f := range rec.Fields() {
		fmt.Fprintf(w, "%s: %s\n", Label(f.Key), Value(f.Value))
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}

// Value formats a record value; absent values print as None.
func Value(v any) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprint(v)
}

// SearchResults writes the owner search summary.
func SearchResults(w io.Writer, owner string, records []domain.Record) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No cattle found for owner '%s'\n", owner)
		return
	}
	fmt.Fprintf(w, "\nFound %d cattle for owner '%s':\n", len(records), owner)
	for _, r := range records {
		age, _ := r.Get(domain.FieldAge)
		fmt.Fprintf(w, "\n  Adhaar ID: %s\n", r.ID())
		fmt.Fprintf(w, "  Breed: %s, Age: %s, Status: %s\n", r.Breed(), Value(age), r.Status())
	}
}

// Statistics writes the registry summary with breeds in first-seen order.
func Statistics(w io.Writer, stats domain.Statistics) {
	fmt.Fprintf(w, "\nTotal Registered Cattle: %d\n", stats.TotalRegistered)
	fmt.Fprintf(w, "Active Cattle: %d\n", stats.Active)
	fmt.Fprintf(w, "Inactive Cattle: %d\n", stats.Inactive)
	fmt.Fprintln(w, "\nBreed Distribution:")
	for _, breed := range stats.BreedOrder {
		fmt.Fprintf(w, "  %s: %d\n", breed, stats.BreedsDistribution[breed])
	}
}
