package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wichananm65/recommendation-console/internal/console"
)

func render(w io.Writer, vm console.ViewModel) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if vm.Flash != "" {
		fmt.Fprintf(tw, "%s\n\n", vm.Flash)
	}
	fmt.Fprintf(tw, "Product ID:\t%s\n", vm.Form.ProductID)
	fmt.Fprintf(tw, "Recommended Product ID:\t%s\n", vm.Form.RecommendationProductID)
	fmt.Fprintf(tw, "Relationship:\t%s\n", vm.Form.Relationship)
	fmt.Fprintf(tw, "Likes:\t%s\n", vm.Form.Likes)
	fmt.Fprintf(tw, "Dislikes:\t%s\n", vm.Form.Dislikes)
	if err := tw.Flush(); err != nil {
		return err
	}
	if vm.Results == nil {
		return nil
	}

	fmt.Fprintf(w, "\n%d result(s)\n", vm.Results.Matches())
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range vm.Results.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
