package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goliatone/go-print"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "get <path>",
		Short:        "GET an API path with the session token",
		Long:         `Send a GET request through the refreshing transport. A 401 triggers one refresh and replay.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := apiURL(a.cfg.GetBaseURL(), args[0])
			if err != nil {
				return errors.Wrapf(err, "invalid path %q", args[0])
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := a.transport().Client().Do(req)
			if err != nil {
				return errors.Wrap(err, "request failed")
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return errors.Wrap(err, "failed to read response")
			}

			out := cmd.OutOrStdout()
			status := green
			if resp.StatusCode >= http.StatusBadRequest {
				status = red
			}
			status.Fprintln(out, resp.Status)
			fmt.Fprintln(out, formatBody(body))

			if resp.StatusCode >= http.StatusBadRequest {
				return errors.Errorf("request returned %s", resp.Status)
			}
			return nil
		},
	}

	return cmd
}

func apiURL(base, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return u.ResolveReference(ref).String(), nil
}

func formatBody(body []byte) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}
	return print.MaybePrettyJSON(payload)
}
