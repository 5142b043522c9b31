// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import "code.hybscloud.com/atomix"

// Serial identifies a channel within the process. Serials increase
// monotonically across NewChannel calls and never repeat; copied
// handles share the serial of the state they point at, which makes it
// usable as a map key for per-channel bookkeeping.
type Serial = uint32

var serialCounter atomix.Uint32

func nextSerial() Serial {
	return serialCounter.Add(1)
}
