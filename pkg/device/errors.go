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

package device

import (
	"fmt"
)

// ErrHandshake returned when the dongle does not complete the connect sequence
type ErrHandshake struct {
	What string
	Err  error
}

func (e ErrHandshake) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Dongle handshake failed: %s: %s", e.What, e.Err)
	}
	return fmt.Sprintf("Dongle handshake failed: %s", e.What)
}

func (e ErrHandshake) Unwrap() error {
	return e.Err
}

// ErrBadHeadsetID returned when a headset ID can not be used for the connect command
type ErrBadHeadsetID struct {
	ID   string
	What string
}

func (e ErrBadHeadsetID) Error() string {
	return fmt.Sprintf("Bad headset ID %q: %s", e.ID, e.What)
}
