// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

// Error messages.
const (
	msgInvalidSurahNumber = "Numéro de sourate invalide. Entrez un nombre entre 1 et 114."
	msgUseRead            = "Utilisez : /read 18 (numéro de sourate entre 1 et 114)."
	msgUseSearch          = "Utilisez : /search baqara"
	msgNoSearchResults    = "Aucune sourate ne correspond à « %s »."
	msgLoadFailed         = "Impossible de charger la sourate. Vérifiez votre connexion et réessayez."
	msgSurahsUnavailable  = "Impossible d'afficher la liste des sourates. Réessayez plus tard."
	msgNotAuthenticated   = "Envoyez /start pour vous identifier avant d'enregistrer votre progression."
	msgNoLastRead         = "Aucune lecture enregistrée. Marquez un verset avec 🔖 pendant la lecture."
	msgSurahNotLoaded     = "Ouvrez d'abord une sourate avec /read."
	msgVerseNotLoaded     = "Ce verset ne fait pas partie de la sourate ouverte."
	msgBookmarkFailed     = "Impossible d'enregistrer la progression. Réessayez."
	msgInternalError      = "Une erreur est survenue. Réessayez plus tard."
	msgUnknownCommand     = "Commande inconnue. Envoyez /help pour la liste des commandes."
)

const (
	titleSurahList     = "📜 Les 114 sourates"
	titleSearchResults = "🔎 Résultats pour « %s »"
)

// Short answers shown in the callback toast.
const (
	toastBookmarked   = "🔖 Verset %s enregistré"
	toastLoading      = "Chargement…"
	toastResetDone    = "Progression effacée"
	toastResetAborted = "Annulé"
)

const (
	surahsPerPage    = 10
	versesPerPage    = 5
	maxPageTextRunes = 3500
	maxSearchResults = 20
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// welcomeMessage is shown on the very first /start of a user.
func welcomeMessage(firstName string) string {
	var sb strings.Builder

	sb.WriteString(md("السلام عليكم ورحمة الله وبركاته"))
	sb.WriteString("\n\n")
	if firstName != "" {
		sb.WriteString(md(fmt.Sprintf("Bienvenue %s !", firstName)))
	} else {
		sb.WriteString(md("Bienvenue !"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(md("Ce bot vous accompagne dans la lecture du "))
	sb.WriteString(bold("Coran"))
	sb.WriteString(md(" : texte arabe, "))
	sb.WriteString(bold("phonétique"))
	sb.WriteString(md(", traduction "))
	sb.WriteString(bold("française"))
	sb.WriteString(md(" et récitation verset par verset."))
	sb.WriteString("\n\n")
	sb.WriteString(md("Marquez un verset avec 🔖 et reprenez plus tard avec /continue."))
	sb.WriteString("\n\n")
	sb.WriteString(helpMessage())

	return sb.String()
}

func helpMessage() string {
	var sb strings.Builder

	sb.WriteString(bold("Commandes"))
	sb.WriteString("\n")
	sb.WriteString(md("/surahs — liste des 114 sourates"))
	sb.WriteString("\n")
	sb.WriteString(md("/read N — lire la sourate N (ou envoyez simplement le numéro)"))
	sb.WriteString("\n")
	sb.WriteString(md("/search nom — chercher une sourate"))
	sb.WriteString("\n")
	sb.WriteString(md("/continue — reprendre la lecture"))
	sb.WriteString("\n")
	sb.WriteString(md("/reset — effacer la progression"))

	return sb.String()
}

// greetingMessage is shown on /start for returning users.
func greetingMessage(user *entities.User) string {
	var sb strings.Builder

	sb.WriteString(md("As-salamu alaykum"))
	if user.FirstName != "" {
		sb.WriteString(md(" " + user.FirstName))
	}
	sb.WriteString(md(" !"))
	sb.WriteString("\n\n")

	if lr := user.LastRead; lr != nil {
		sb.WriteString(md("Dernière lecture : "))
		sb.WriteString(bold(fmt.Sprintf("%s, verset %d", lr.SurahNamePhonetic, lr.VerseNumber)))
		sb.WriteString("\n")
		sb.WriteString(md("Envoyez /continue pour reprendre."))
		sb.WriteString("\n\n")
	}

	sb.WriteString(helpMessage())
	return sb.String()
}

func resetConfirmMessage() string {
	return md("Effacer votre dernière lecture enregistrée ?")
}

// formatSurahLine formats a surah as a single list line.
func formatSurahLine(s *entities.Surah) string {
	return fmt.Sprintf("%d. %s (%s) · %d versets", s.Number, s.NamePhonetic, s.NameFrench, s.VersesCount)
}

// formatSurahHeader formats the title block of a reading page.
func formatSurahHeader(s *entities.Surah, page, totalPages int) string {
	revelation := "médinoise"
	if s.IsMeccan() {
		revelation = "mecquoise"
	}

	return fmt.Sprintf("%s %s\n%s\n%s",
		bold(fmt.Sprintf("%d. %s", s.Number, s.NamePhonetic)),
		md(s.NameArabic),
		italic(fmt.Sprintf("%s · %d versets · %s", s.NameFrench, s.VersesCount, revelation)),
		md(fmt.Sprintf("Page %d/%d", page+1, totalPages)),
	)
}

// formatVerse formats a verse card. The bookmarked verse is marked.
func formatVerse(v entities.Verse, bookmarked bool) string {
	var sb strings.Builder

	marker := ""
	if bookmarked {
		marker = " 🔖"
	}
	sb.WriteString(bold(v.Key() + marker))
	sb.WriteString("\n")
	sb.WriteString(md(v.TextArabic))
	if v.TextPhonetic != "" {
		sb.WriteString("\n")
		sb.WriteString(italic(v.TextPhonetic))
	}
	if v.TextFrench != "" {
		sb.WriteString("\n")
		sb.WriteString(md(v.TextFrench))
	}

	return sb.String()
}

// formatPlayer formats the player message of a session.
func formatPlayer(sess *entities.ReadingSession) string {
	p := sess.Playback
	if p.Current == nil {
		if sess.Surah != nil {
			return md(fmt.Sprintf("⏹ Fin de la récitation de %s.", sess.Surah.NamePhonetic))
		}
		return md("⏹ Lecture arrêtée.")
	}

	name := ""
	if sess.Surah != nil {
		name = sess.Surah.NamePhonetic + " "
	}
	title := fmt.Sprintf("%s%s", name, p.Current.Key())

	switch {
	case p.AudioUnavailable:
		return md(fmt.Sprintf("⚠️ Audio indisponible pour %s.", title))
	case p.Playing:
		return md(fmt.Sprintf("▶️ Lecture : %s", title))
	default:
		return md(fmt.Sprintf("⏸ En pause : %s", title))
	}
}
