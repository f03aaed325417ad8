/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package status

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nuts-foundation/irma-broker/core"
	"github.com/spf13/cobra"
)

const (
	addressFlag = "address"
	jsonFlag    = "json"
)

// Cmd contains the status command, which prints the diagnostics of a running broker.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Shows the status of a running IRMA broker.",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := cmd.Flags().GetString(addressFlag)
			if err != nil {
				return err
			}
			targetURL := strings.TrimSuffix(address, "/") + diagnosticsEndpoint
			request, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, targetURL, nil)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool(jsonFlag); asJSON {
				request.Header.Set("Accept", "application/json")
			}
			response, err := core.NewStrictHTTPClient(false, 10*time.Second, nil).Do(request)
			if err != nil {
				return err
			}
			defer response.Body.Close()
			if err = core.TestResponseCode(http.StatusOK, response); err != nil {
				return fmt.Errorf("unexpected HTTP response (url=%s): %w", targetURL, err)
			}
			data, err := io.ReadAll(response.Body)
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		},
	}
	cmd.Flags().String(addressFlag, "http://localhost:1323", "Address of the broker's HTTP interface.")
	cmd.Flags().Bool(jsonFlag, false, "Print the diagnostics as JSON.")
	return cmd
}
