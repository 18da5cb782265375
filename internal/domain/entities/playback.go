package entities

// Playback is the state of the single audio source of a reading session.
// Only one verse is resident at a time.
type Playback struct {
	Current          *Verse // verse loaded into the audio source, nil when stopped
	Playing          bool
	AudioUnavailable bool // last attempt to play Current failed
}

// IsPlaying reports whether the given verse is the current one and is playing.
func (p *Playback) IsPlaying(v Verse) bool {
	return p.Playing && p.IsCurrent(v)
}

// IsCurrent reports whether the given verse is loaded into the audio source.
func (p *Playback) IsCurrent(v Verse) bool {
	return p.Current != nil && p.Current.Key() == v.Key()
}

// Play toggles the verse: pressing play on the verse that is already playing
// pauses it, otherwise the verse becomes current and starts playing.
// It returns true when the audio source has to start playing.
func (p *Playback) Play(v Verse) bool {
	if p.IsPlaying(v) {
		p.Playing = false
		return false
	}

	verse := v
	p.Current = &verse
	p.Playing = true
	p.AudioUnavailable = false
	return true
}

// Resume restarts the current verse after a pause.
// It returns false when there is nothing to resume or the audio is unavailable.
func (p *Playback) Resume() bool {
	if p.Current == nil || p.AudioUnavailable {
		return false
	}
	p.Playing = true
	return true
}

// Pause clears the playing flag only.
func (p *Playback) Pause() {
	p.Playing = false
}

// Next advances to the verse following the current one and keeps playing.
// At the end of the list, or when the current verse is not part of it,
// the playback is stopped. It returns true when a new verse has to be played.
func (p *Playback) Next(verses []Verse) bool {
	if p.Current == nil || len(verses) == 0 {
		p.Stop()
		return false
	}

	idx := -1
	for i, v := range verses {
		if v.Key() == p.Current.Key() {
			idx = i
			break
		}
	}

	if idx < 0 || idx >= len(verses)-1 {
		p.Stop()
		return false
	}

	next := verses[idx+1]
	p.Current = &next
	p.Playing = true
	p.AudioUnavailable = false
	return true
}

// Fail marks the current audio as unavailable and stops playing. The verse
// stays current so the failure can be shown to the user.
func (p *Playback) Fail() {
	p.Playing = false
	p.AudioUnavailable = true
}

// Stop clears the state entirely.
func (p *Playback) Stop() {
	p.Current = nil
	p.Playing = false
	p.AudioUnavailable = false
}
