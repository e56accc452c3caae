package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/soyeahso/reactor/internal/tools/auth"
	"github.com/soyeahso/reactor/internal/tools/music"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google and Spotify",
	}

	cmd.AddCommand(newAuthGoogleCmd())
	cmd.AddCommand(newAuthSpotifyCmd())
	return cmd
}

func newAuthGoogleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "google",
		Short: "Authorize Gmail and Google Calendar access",
		Long: "Authorize Gmail and Google Calendar access. Download an OAuth client (desktop app) " +
			"from the Google Cloud console and save it as tools.google.credentialsFile first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			oc, err := auth.GoogleConfig(cfg.Tools.Google.CredentialsFile)
			if err != nil {
				return err
			}
			return authorize(cmd, oc, cfg.Tools.Google.TokenFile)
		},
	}
}

func newAuthSpotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spotify",
		Short: "Authorize Spotify playback control",
		Long: "Authorize Spotify playback control. After approving, paste the full URL your browser " +
			"was redirected to (or just its code parameter).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mc := cfg.Tools.Music
			if mc.ClientID == "" {
				return fmt.Errorf("tools.music.clientId is not set")
			}
			return authorize(cmd, music.OAuthConfig(mc.ClientID, mc.ClientSecret), mc.TokenFile)
		},
	}
}

func authorize(cmd *cobra.Command, oc *oauth2.Config, tokenFile string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tok, err := auth.Authorize(ctx, oc, os.Stdin, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := auth.SaveToken(tokenFile, tok); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Token saved to "+tokenFile))
	return nil
}
