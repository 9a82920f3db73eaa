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

package decode

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/junjunjd/rustymind/pkg/layers"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

const (
	decodeExample = `
Decode one frame
# rustymind decode "aa aa 04 80 02 00 10 6d"
`
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decode <hex>...",
		Short:   "Decode hex encoded frames",
		Example: decodeExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.NewReplacer(" ", "", ":", "").Replace(strings.Join(args, "")))
			if err != nil {
				return fmt.Errorf("invalid hex input: %w", err)
			}
			frames, err := layers.DecodeFrames(data)
			out := cmd.OutOrStdout()
			for i, frame := range frames {
				fmt.Fprintf(out, "# frame %d: length %d checksum 0x%02x\n", i, frame.Length, frame.Checksum)
				for _, r := range frame.Records {
					line, err := thinkgear.MarshalRecord(r)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(line))
				}
			}
			return err
		},
	}
	return cmd
}
