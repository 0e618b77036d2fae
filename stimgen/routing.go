package stimgen

// defaultChannels routes a stimulus to both sides of a stereo pair when a
// definition names no channels.
var defaultChannels = []int{0, 1}

// Routing maps a synthesized mono signal onto output channels. Channels is
// a 0-indexed list; the signal is copied identically into every listed
// channel, with no panning or attenuation.
type Routing struct {
	Channels []int `json:"channels" yaml:"channels"`
}

// effective returns the channel list with the stereo default applied.
func (r Routing) effective() []int {
	if len(r.Channels) == 0 {
		return defaultChannels
	}
	return r.Channels
}

// ChannelCount reports the output width implied by the routing:
// max(channels)+1, or 2 when no channels are listed.
func (r Routing) ChannelCount() int {
	count := 0
	for _, ch := range r.effective() {
		if ch+1 > count {
			count = ch + 1
		}
	}
	return count
}

// Validate rejects negative channel indices with ErrBadRouting.
func (r Routing) Validate() error {
	for _, ch := range r.Channels {
		if ch < 0 {
			return wrapf(ErrBadRouting, "channel %d", ch)
		}
	}
	return nil
}

// route copies a mono signal into every routed channel of a fresh
// interleaved buffer; unrouted channels stay silent.
func route(mono []float64, r Routing) Buffer {
	buf := NewBuffer(len(mono), r.ChannelCount())
	for _, ch := range r.effective() {
		for i, v := range mono {
			buf.Data[i*buf.Channels+ch] = float32(v)
		}
	}
	return buf
}
