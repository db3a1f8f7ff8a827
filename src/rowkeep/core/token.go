package core

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/bitswalk/rowkeep/src/rowkeep/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a signed API token",
	Long: `Issues a token signed with auth.secret. When no secret is configured
and stdin is a terminal, the secret is prompted for.`,
	RunE: runTokenIssue,
}

// issuedToken is the result of token issue
type issuedToken struct {
	Token     string    `json:"token" yaml:"token"`
	Subject   string    `json:"subject" yaml:"subject"`
	Scopes    []string  `json:"scopes" yaml:"scopes"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().String("subject", "", "Token subject (required)")
	tokenIssueCmd.Flags().StringSlice("scope", []string{auth.ScopeRead}, "Scopes: read, write, admin")
	tokenIssueCmd.Flags().Duration("ttl", 0, "Token lifetime (default: auth.token_duration)")
	_ = tokenIssueCmd.MarkFlagRequired("subject")
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	scopes, _ := cmd.Flags().GetStringSlice("scope")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	if viper.GetString("auth.secret") == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Secret: ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr())
		viper.Set("auth.secret", string(secret))
	}

	tokens := newTokenService()
	token, err := tokens.Issue(subject, scopes, ttl)
	if err != nil {
		return err
	}

	claims, err := tokens.Validate(token)
	if err != nil {
		return err
	}

	result := issuedToken{Token: token, Subject: claims.Subject, Scopes: claims.Scopes, ExpiresAt: claims.ExpiresAt}
	return render(cmd, result, func() ([]string, [][]string) {
		return []string{"SUBJECT", "SCOPES", "EXPIRES", "TOKEN"}, [][]string{{
			result.Subject,
			fmt.Sprint(result.Scopes),
			result.ExpiresAt.UTC().Format(time.RFC3339),
			result.Token,
		}}
	})
}
