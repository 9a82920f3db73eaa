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

package connect

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/junjunjd/rustymind/pkg/command"
	"github.com/junjunjd/rustymind/pkg/config"
	"github.com/junjunjd/rustymind/pkg/device"
)

const (
	PortOptionName       = "port"
	BaudOptionName       = "baud"
	HeadsetOptionName    = "headset"
	EchoOptionName       = "echo"
	ApiAddressOptionName = "api-address"
	ApiPortOptionName    = "api-port"
	NoApiOptionName      = "no-api"
	NatsURLOptionName    = "nats-url"
	DBPathOptionName     = "db"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var port, headset, apiAddress, natsURL, dbPath string
	var baud, apiPort int
	var echo, noApi bool
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a headset and stream its data",
		Long: fmt.Sprintf(`Connect to a headset through the dongle and stream its data.
Use --port %s to stream from the built-in generator instead of a dongle.`, device.PortMock),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed(PortOptionName) {
				cfg.DongleConfig.Path = port
			}
			if flags.Changed(BaudOptionName) {
				cfg.BaudRate = baud
			}
			if flags.Changed(HeadsetOptionName) {
				cfg.HeadsetID = headset
			}
			if flags.Changed(EchoOptionName) {
				cfg.Echo = echo
			}
			if flags.Changed(ApiAddressOptionName) {
				cfg.ApiConfig.Address = apiAddress
			}
			if flags.Changed(ApiPortOptionName) {
				cfg.ApiConfig.Port = apiPort
			}
			if flags.Changed(NoApiOptionName) {
				cfg.ApiConfig.Disabled = noApi
			}
			if flags.Changed(NatsURLOptionName) {
				cfg.NatsConfig.URL = natsURL
			}
			if flags.Changed(DBPathOptionName) {
				cfg.DBPath = dbPath
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return command.StartSession(ctx, cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&port, PortOptionName, "", fmt.Sprintf("Serial port of the dongle. E.g. %s", config.DefaultDonglePath))
	cmd.Flags().IntVar(&baud, BaudOptionName, config.DefaultBaudRate, "Baud rate")
	cmd.Flags().StringVar(&headset, HeadsetOptionName, "", "Hex headset ID to connect to. E.g. a26c. Empty or c2 auto-connects")
	cmd.Flags().BoolVar(&echo, EchoOptionName, false, "Print every record as a JSON line")
	cmd.Flags().StringVar(&apiAddress, ApiAddressOptionName, "", fmt.Sprintf("Address to bind the API server. E.g. %s", config.DefaultApiAddress))
	cmd.Flags().IntVar(&apiPort, ApiPortOptionName, config.DefaultApiPort, "Port of the API server")
	cmd.Flags().BoolVar(&noApi, NoApiOptionName, false, "Do not start the API server")
	cmd.Flags().StringVar(&natsURL, NatsURLOptionName, "", "Publish records to this NATS server. E.g. nats://127.0.0.1:4222")
	cmd.Flags().StringVar(&dbPath, DBPathOptionName, "", "Headset database file")
	return cmd
}

func NewPortsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := device.ListPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	return cmd
}
