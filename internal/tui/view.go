package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

const (
	statusAnonymous        = "Mode anonyme : configurez reader.user_name pour enregistrer votre progression."
	statusSurahsFailed     = "Impossible d'afficher la liste des sourates."
	statusNoResults        = "Aucune sourate ne correspond à « %s »."
	statusLoading          = "Chargement de la sourate %d…"
	statusLoadFailed       = "Impossible de charger la sourate. r : réessayer"
	statusInvalidSurah     = "Numéro de sourate invalide."
	statusBookmarked       = "🔖 Verset %s enregistré"
	statusBookmarkFailed   = "Impossible d'enregistrer la progression."
	statusPlaybackFailed   = "Lecture impossible."
	statusNotAuthenticated = "Aucun profil : la progression ne peut pas être enregistrée."
	statusNoLastRead       = "Aucune lecture enregistrée. Marquez un verset avec b."
	statusSurahNotLoaded   = "Ouvrez d'abord une sourate."
	statusVerseNotLoaded   = "Ce verset ne fait pas partie de la sourate ouverte."

	welcomeText = "Bienvenue %s ! Choisissez une sourate, écoutez chaque verset et marquez votre lecture avec b."

	helpList    = "j/k: Naviguer • Entrée: Lire • /: Chercher • c: Reprendre • q: Quitter"
	helpSearch  = "Tapez pour chercher • Entrée: Valider • Échap: Retour"
	helpReading = "j/k: Verset • espace/p: Écouter • s: Pause • n: Suivant • b: Marquer • h/l: Sourate • Échap: Liste • q: Quitter"

	// verseIndent is the width of the cursor and verse number column.
	verseIndent = 6
)

func (m model) View() string {
	var content strings.Builder

	var help string
	switch m.mode {
	case readingMode:
		help = helpReading
		m.renderReading(&content)
	case searchMode:
		help = helpSearch
		m.renderSearch(&content)
	default:
		help = helpList
		m.renderList(&content)
	}

	used := lipgloss.Height(content.String())
	if remaining := m.height - used - 2; remaining > 0 {
		content.WriteString(strings.Repeat("\n", remaining))
	}

	content.WriteString(m.statusLine())
	content.WriteByte('\n')
	content.WriteString(m.centerText(m.dimStyle.Render(help)))

	return content.String()
}

func (m model) renderList(content *strings.Builder) {
	title := "Sourates"
	if m.query != "" {
		title = fmt.Sprintf("Recherche : %s (%d)", m.query, len(m.surahs))
	}
	content.WriteString(m.centerText(m.titleStyle.Render(title)))
	content.WriteString("\n\n")

	if m.welcome {
		name := m.user.FirstName
		if name == "" {
			name = m.user.Username
		}
		content.WriteString(m.centerText(m.statusStyle.Render(fmt.Sprintf(welcomeText, name))))
		content.WriteString("\n\n")
	}

	visible := m.visibleSurahs()
	offset := scrollFor(m.selected, m.scrollOffset, visible)
	end := min(len(m.surahs), offset+visible)

	for i := offset; i < end; i++ {
		s := m.surahs[i]
		cursor := " "
		if i == m.selected {
			cursor = m.verseNumStyle.Render(">")
		}
		line := fmt.Sprintf("%s %s %s  %s  %s",
			cursor,
			m.verseNumStyle.Render(fmt.Sprintf("%3d", s.Number)),
			m.textStyle.Render(s.NamePhonetic),
			m.arabicStyle.Render(s.NameArabic),
			m.dimStyle.Render(fmt.Sprintf("%s · %d versets", s.NameFrench, s.VersesCount)),
		)
		content.WriteString(line)
		content.WriteByte('\n')
	}
}

func (m model) renderSearch(content *strings.Builder) {
	content.WriteString(m.centerText(m.titleStyle.Render("Chercher une sourate")))
	content.WriteString("\n\n")
	content.WriteString("  / ")
	content.WriteString(m.textStyle.Render(m.input))
	content.WriteString(m.dimStyle.Render("█"))
	content.WriteByte('\n')
}

func (m model) renderReading(content *strings.Builder) {
	s := m.session.Surah
	header := fmt.Sprintf("%d. %s · %s · %s (%d versets)",
		s.Number, s.NamePhonetic, s.NameArabic, s.NameFrench, s.VersesCount)
	content.WriteString(m.centerText(m.titleStyle.Render(header)))
	content.WriteString("\n\n")

	verses := m.session.Verses
	available := m.availableVerseHeight()
	offset := m.verseOffset(available)

	used := 0
	for i := offset; i < len(verses); i++ {
		h := m.verseHeight(verses[i])
		if used+h > available && i > offset {
			break
		}
		used += m.renderVerse(content, verses[i], i == m.verseSelected)
	}
}

// verseOffset returns the first verse to draw so that the selected one fits
// in the available height.
func (m model) verseOffset(available int) int {
	offset := min(m.verseScroll, m.verseSelected)
	for offset < m.verseSelected {
		h := 0
		for i := offset; i <= m.verseSelected; i++ {
			h += m.verseHeight(m.session.Verses[i])
		}
		if h <= available {
			break
		}
		offset++
	}
	return offset
}

func (m model) availableVerseHeight() int {
	return max(5, m.height-6)
}

func (m model) verseHeight(v entities.Verse) int {
	width := m.textWidth()
	lines := len(wrapText(v.TextArabic, width)) + len(wrapText(v.TextFrench, width))
	if v.TextPhonetic != "" {
		lines += len(wrapText(v.TextPhonetic, width))
	}
	return lines + 1
}

func (m model) textWidth() int {
	return max(20, m.width-verseIndent)
}

func (m model) renderVerse(content *strings.Builder, v entities.Verse, selected bool) int {
	cursor := " "
	if selected {
		cursor = m.verseNumStyle.Render(">")
	}

	marker := " "
	switch {
	case m.session.Playback.IsPlaying(v):
		marker = "▶"
	case m.session.Playback.IsCurrent(v) && m.session.Playback.AudioUnavailable:
		marker = "⚠"
	case m.session.Playback.IsCurrent(v):
		marker = "⏸"
	}
	if v.Key() == m.session.BookmarkKey {
		marker += "🔖"
	}

	padding := strings.Repeat(" ", verseIndent)
	width := m.textWidth()
	lines := 0

	writeBlock := func(text string, style lipgloss.Style, first bool) {
		for i, line := range wrapText(text, width) {
			if first && i == 0 {
				content.WriteString(cursor)
				content.WriteByte(' ')
				content.WriteString(m.verseNumStyle.Render(fmt.Sprintf("%3d", v.VerseNumber)))
				content.WriteByte(' ')
			} else {
				content.WriteString(padding)
			}
			content.WriteString(style.Render(line))
			if first && i == 0 {
				content.WriteString(" " + marker)
			}
			content.WriteByte('\n')
			lines++
		}
	}

	writeBlock(v.TextArabic, m.arabicStyle, true)
	if v.TextPhonetic != "" {
		writeBlock(v.TextPhonetic, m.dimStyle, false)
	}
	writeBlock(v.TextFrench, m.textStyle, false)

	content.WriteByte('\n')
	return lines + 1
}

func (m model) statusLine() string {
	var parts []string

	if m.mode == readingMode && m.session != nil {
		pb := m.session.Playback
		if pb.Current != nil {
			key := pb.Current.Key()
			switch {
			case pb.AudioUnavailable:
				parts = append(parts, m.errorStyle.Render("⚠ Audio indisponible "+key))
			case pb.Playing:
				parts = append(parts, m.statusStyle.Render("▶ Lecture "+key))
			default:
				parts = append(parts, m.statusStyle.Render("⏸ En pause "+key))
			}
		}
	}

	if m.status != "" {
		parts = append(parts, m.dimStyle.Render(m.status))
	}

	return strings.Join(parts, "  ")
}

func (m model) visibleSurahs() int {
	reserved := 6
	if m.welcome {
		reserved += 2
	}
	return max(3, m.height-reserved)
}

// scrollFor keeps selected inside a window of visible items starting at offset.
func scrollFor(selected, offset, visible int) int {
	if selected < offset {
		return selected
	}
	if selected >= offset+visible {
		return selected - visible + 1
	}
	return offset
}

func (m model) centerText(text string) string {
	visualWidth := lipgloss.Width(text)
	if visualWidth >= m.width {
		return text
	}
	return strings.Repeat(" ", (m.width-visualWidth)/2) + text
}

// wrapText splits text into lines of at most maxWidth cells, breaking on spaces.
// Empty text still takes one line.
func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || maxWidth <= 0 {
		return []string{text}
	}

	lines := make([]string, 0, 1)
	var line strings.Builder
	lineWidth := 0
	for _, word := range words {
		w := lipgloss.Width(word)
		if lineWidth > 0 && lineWidth+1+w > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
