package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Credentials selects how the Sheets client authenticates. A service
// account blob is preferred; the user-OAuth pair exists for setups that
// predate the service account, and expects an already-provisioned token
// file (the server never runs an interactive consent flow).
type Credentials struct {
	ServiceAccountJSON string
	ClientSecretJSON   string
	TokenFile          string
}

var ErrNoCredentials = errors.New("no Google credentials configured")

// NewService builds an authenticated Sheets client from whichever
// credential source is configured.
func NewService(ctx context.Context, creds Credentials) (*gsheets.Service, error) {
	switch {
	case creds.ServiceAccountJSON != "":
		svc, err := gsheets.NewService(ctx,
			option.WithCredentialsJSON([]byte(creds.ServiceAccountJSON)),
			option.WithScopes(gsheets.SpreadsheetsScope),
		)
		if err != nil {
			return nil, fmt.Errorf("service account client: %w", err)
		}
		return svc, nil

	case creds.ClientSecretJSON != "":
		conf, err := google.ConfigFromJSON([]byte(creds.ClientSecretJSON), gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse client secret: %w", err)
		}
		tok, err := tokenFromFile(creds.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("load oauth token (provision %q out of band): %w", creds.TokenFile, err)
		}
		svc, err := gsheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, tok)))
		if err != nil {
			return nil, fmt.Errorf("oauth client: %w", err)
		}
		return svc, nil

	default:
		return nil, ErrNoCredentials
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &tok, nil
}
