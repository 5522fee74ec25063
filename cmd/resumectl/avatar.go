package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resumeBuilder/internal/avatar"
	"resumeBuilder/internal/resume"
)

var avatarCmd = &cobra.Command{
	Use:   "avatar <id> [image]",
	Short: "Set a document's avatar from an image file",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAvatar,
}

var avatarClear bool

func init() {
	avatarCmd.Flags().BoolVar(&avatarClear, "clear", false, "Remove the avatar instead")
	rootCmd.AddCommand(avatarCmd)
}

func runAvatar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	doc, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	if !avatarClear && len(args) < 2 {
		return errors.New("image path is required unless --clear is set")
	}

	if avatarClear {
		empty := ""
		doc.UpdatePersonal(resume.PersonalPatch{Avatar: &empty})
	} else {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		size := int64(-1)
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		res, err := avatar.NewFromConfig(cfg.Avatar).Attach(doc, f, size)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "avatar %dx%d from %s\n", res.Width, res.Height, res.SourceMIME)
	}

	if err := st.Save(cmd.Context(), doc); err != nil {
		return fmt.Errorf("save %s: %w", args[0], err)
	}
	return nil
}
