package session

import "time"

type banner struct {
	text    string
	expires time.Time
}

func (s *Session) raiseBannerLocked(text string, now time.Time) {
	s.banner = banner{text: text, expires: now.Add(s.opts.BannerTTL)}
}

// Banner returns the current failure notice. It dismisses itself once
// Options.BannerTTL has passed since it was raised.
func (s *Session) Banner() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.banner.text == "" || !s.opts.Now().Before(s.banner.expires) {
		return "", false
	}
	return s.banner.text, true
}
