/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junjunjd/rustymind/pkg/command"
	"github.com/junjunjd/rustymind/pkg/config"
)

const (
	ApiOptionName = "api"
)

func apiFlag(cmd *cobra.Command, addr *string) {
	cmd.Flags().StringVar(addr, ApiOptionName, "", "host:port of the API server. Default from the config file")
}

func newClient(cfg *config.Config, addr string) *command.ApiClient {
	if addr == "" {
		addr = cfg.ApiAddr()
	}
	return command.NewApiClient(addr)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func NewStatusCommand(cfg *config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running session",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := newClient(cfg, addr).Status()
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		},
	}
	apiFlag(cmd, &addr)
	return cmd
}

func NewESenseCommand(cfg *config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "esense",
		Short: "Show the latest eSense values of a running session",
		RunE: func(cmd *cobra.Command, args []string) error {
			esense, err := newClient(cfg, addr).ESense()
			if err != nil {
				return err
			}
			return printJSON(cmd, esense)
		},
	}
	apiFlag(cmd, &addr)
	return cmd
}

func NewHeadsetsCommand(cfg *config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "headsets",
		Short: "List the headsets the dongle has connected to",
		RunE: func(cmd *cobra.Command, args []string) error {
			headsets, err := newClient(cfg, addr).Headsets()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, h := range headsets {
				fmt.Fprintf(out, "%s\tconnects: %d\tfirst seen: %s\tlast seen: %s\n",
					h.ID, h.Connects, h.FirstSeen.Format("2006-01-02 15:04:05"), h.LastSeen.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	apiFlag(cmd, &addr)
	return cmd
}
