package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

type oauthClient struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// parseCredentials accepts a bare client object or the console download
// with an "installed" or "web" section.
func parseCredentials(data []byte) (*oauthClient, error) {
	var direct oauthClient
	if err := json.Unmarshal(data, &direct); err == nil && direct.ClientID != "" && direct.ClientSecret != "" {
		return &direct, nil
	}
	var file struct {
		Installed *oauthClient `json:"installed"`
		Web       *oauthClient `json:"web"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse credentials")
	}
	switch {
	case file.Installed != nil:
		return file.Installed, nil
	case file.Web != nil:
		return file.Web, nil
	}
	return nil, errors.New("no client credentials found, expected an installed or web section")
}

func newGmailAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gmail-auth <credentials.json>",
		Short: "Obtain a Gmail refresh token for the email channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read credentials file")
			}
			creds, err := parseCredentials(data)
			if err != nil {
				return err
			}
			conf := &oauth2.Config{
				ClientID:     creds.ClientID,
				ClientSecret: creds.ClientSecret,
				RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
				Scopes:       []string{gmail.GmailSendScope},
				Endpoint:     google.Endpoint,
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔗 Open this URL and authorize pulse:\n   %s\n\n", conf.AuthCodeURL("pulse", oauth2.AccessTypeOffline))
			fmt.Fprint(out, "📝 Enter the authorization code: ")

			var code string
			if _, err := fmt.Fscan(cmd.InOrStdin(), &code); err != nil {
				return errors.Wrap(err, "read authorization code")
			}
			token, err := conf.Exchange(cmd.Context(), code)
			if err != nil {
				return errors.Wrap(err, "exchange authorization code")
			}
			if token.RefreshToken == "" {
				return errors.New("no refresh token returned, revoke the app's access and retry")
			}

			fmt.Fprintf(out, "\n✅ Add these to your .env file:\n\n")
			fmt.Fprintf(out, "GMAIL_CREDENTIALS_JSON='%s'\n", string(data))
			fmt.Fprintf(out, "GMAIL_REFRESH_TOKEN='%s'\n", token.RefreshToken)
			return nil
		},
	}
}
