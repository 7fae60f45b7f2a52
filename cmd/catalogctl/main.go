package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// commonFlags are shared by every command that talks to the server.
type commonFlags struct {
	url     string
	token   string
	timeout time.Duration
}

// listFlags holds the parsed flags for the list command.
type listFlags struct {
	commonFlags
	userView bool
	search   string
	category string
	brand    string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Browse the product catalog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var common commonFlags
	pf := root.PersistentFlags()
	pf.StringVar(&common.url, "url", envOr("CATALOG_URL", "http://localhost:8080"), "Catalog server base URL")
	pf.StringVar(&common.token, "token", os.Getenv("CATALOG_TOKEN"), "Bearer token from /api/v1/auth/login")
	pf.DurationVar(&common.timeout, "timeout", 10*time.Second, "HTTP request timeout")

	var flags listFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the products visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.commonFlags = common
			return runList(out, flags)
		},
	}
	f := listCmd.Flags()
	f.BoolVar(&flags.userView, "user", false, "Show the user view even with an admin token")
	f.StringVar(&flags.search, "search", "", "Case-insensitive title search")
	f.StringVar(&flags.category, "category", "", "Only show this category")
	f.StringVar(&flags.brand, "brand", "", "Only show this brand")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show product counts by availability (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(out, common)
		},
	}

	root.AddCommand(listCmd, summaryCmd)
	return root
}

func runList(out io.Writer, flags listFlags) error {
	if len([]rune(flags.search)) > 100 {
		return codeError(3, "search must be at most 100 characters")
	}

	c := newClient(flags.commonFlags)
	state := newListing(flags.token, flags.userView).WithQuery(flags.search).Loading()

	products, err := c.listProducts(flags)
	if err != nil {
		state = state.Failed(err)
		return codeError(2, "listing products: %v", state.Err)
	}
	state = state.Loaded(products)
	return renderListing(out, state)
}

func runSummary(out io.Writer, flags commonFlags) error {
	if flags.token == "" {
		return codeError(3, "summary needs an admin --token")
	}
	summary, err := newClient(flags).summary()
	if err != nil {
		return codeError(2, "fetching summary: %v", err)
	}
	renderSummary(out, summary)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
