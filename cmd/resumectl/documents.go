package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"resumeBuilder/internal/resume"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a document",
	Long:  "Creates a document filled with sample content, or an empty one with --blank.",
	Args:  cobra.NoArgs,
	RunE:  runNew,
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy a document under a new id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDuplicate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var (
	newName   string
	newBlank  bool
	newPreset string
)

func init() {
	newCmd.Flags().StringVarP(&newName, "name", "n", "", "Document name (defaults to \""+resume.DefaultName+"\")")
	newCmd.Flags().BoolVar(&newBlank, "blank", false, "Create an empty document instead of sample content")
	newCmd.Flags().StringVar(&newPreset, "preset", "", "Theme preset id to apply")

	rootCmd.AddCommand(listCmd, newCmd, duplicateCmd, deleteCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	items, err := st.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUPDATED\tEXPORTED")
	for _, item := range items {
		exported := "-"
		if item.ExportedAt != nil {
			exported = item.ExportedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID, item.Name, item.UpdatedAt.Local().Format(time.DateTime), exported)
	}
	return w.Flush()
}

func runNew(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(newName)
	now := time.Now()
	var doc *resume.Document
	if newBlank {
		doc = resume.New(name, now)
	} else if doc, err = resume.NewSample(name, now); err != nil {
		return err
	}
	if newPreset != "" {
		if err := doc.ApplyPreset(newPreset); err != nil {
			return err
		}
	}

	if err := st.Create(cmd.Context(), doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
	return nil
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	dup, err := st.Duplicate(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("duplicate %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), dup.ID)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := st.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
