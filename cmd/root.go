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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/junjunjd/rustymind/cmd/client"
	"github.com/junjunjd/rustymind/cmd/completion"
	"github.com/junjunjd/rustymind/cmd/config"
	"github.com/junjunjd/rustymind/cmd/connect"
	"github.com/junjunjd/rustymind/cmd/decode"
	"github.com/junjunjd/rustymind/cmd/replay"
	pkgconfig "github.com/junjunjd/rustymind/pkg/config"
	"github.com/junjunjd/rustymind/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
	ConfigOptionName   = "config"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel, configPath string
	cfg := pkgconfig.NewDefaultConfig()
	cmd := &cobra.Command{
		Use:          "rustymind",
		Short:        "Tool to read EEG data from NeuroSky ThinkGear headsets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg.SetPath(configPath)
			}
			if err := cfg.Load(); err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand(cfg))
	cmd.AddCommand(connect.NewCommand(cfg))
	cmd.AddCommand(connect.NewPortsCommand())
	cmd.AddCommand(replay.NewCommand())
	cmd.AddCommand(decode.NewCommand())
	cmd.AddCommand(client.NewStatusCommand(cfg))
	cmd.AddCommand(client.NewESenseCommand(cfg))
	cmd.AddCommand(client.NewHeadsetsCommand(cfg))
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().StringVar(&configPath, ConfigOptionName, "", fmt.Sprintf("Config file. Default %s", pkgconfig.DefaultConfigPath()))
	return cmd
}
