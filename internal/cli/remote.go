package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/linkpay/internal/client"
	"github.com/vietddude/linkpay/internal/core/domain"
)

var (
	apiURL   string
	apiToken string
)

// addRemoteFlags registers the flags of commands that talk to a running server.
func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "linkpay API base URL")
	cmd.Flags().StringVar(&apiToken, "token", "", "bearer token (default $LINKPAY_TOKEN)")
}

func newClient() *client.Client {
	token := apiToken
	if token == "" {
		token = os.Getenv("LINKPAY_TOKEN")
	}
	return client.New(apiURL, token, 10*time.Second)
}

func printItems(out io.Writer, items []domain.OrderedItem) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "POS\tID\tLABEL")
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", item.Position, item.ID, describe(item.Payload))
	}
	_ = w.Flush()
}

func describe(p domain.Payload) string {
	switch v := p.(type) {
	case domain.SocialLink:
		return firstNonEmpty(v.Label, v.Platform, v.URL)
	case domain.PaymentMethod:
		return firstNonEmpty(v.Label, v.Provider+" "+v.Handle, v.URL)
	case domain.QRCode:
		return firstNonEmpty(v.Label, v.TargetURL)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" && v != " " {
			return v
		}
	}
	return ""
}
