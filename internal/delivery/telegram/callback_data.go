package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionSurahs   = "surahs"
	actionRead     = "read"
	actionPlay     = "play"
	actionPause    = "pause"
	actionResume   = "resume"
	actionNext     = "next"
	actionBookmark = "bookmark"
	actionRetry    = "retry"
	actionReset    = "reset"
	actionNoop     = "noop"
)

const (
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// intParam returns the i-th parameter as an int.
func (cd callbackData) intParam(i int) (int, bool) {
	if i >= len(cd.Params) {
		return 0, false
	}
	n, err := strconv.Atoi(cd.Params[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// buildSurahsCallback builds callback data for a page of the surah list.
func buildSurahsCallback(page int) string {
	return callbackData{
		Action: actionSurahs,
		Params: []string{strconv.Itoa(page)},
	}.encode()
}

// buildReadCallback builds callback data for a page of verses of a surah.
func buildReadCallback(surah, page int) string {
	return callbackData{
		Action: actionRead,
		Params: []string{strconv.Itoa(surah), strconv.Itoa(page)},
	}.encode()
}

func buildPlayCallback(surah, verse int) string {
	return callbackData{
		Action: actionPlay,
		Params: []string{strconv.Itoa(surah), strconv.Itoa(verse)},
	}.encode()
}

func buildBookmarkCallback(surah, verse int) string {
	return callbackData{
		Action: actionBookmark,
		Params: []string{strconv.Itoa(surah), strconv.Itoa(verse)},
	}.encode()
}

// buildPlayerCallback builds callback data for the player controls, which act
// on the current verse of the surah.
func buildPlayerCallback(action string, surah int) string {
	return callbackData{
		Action: action,
		Params: []string{strconv.Itoa(surah)},
	}.encode()
}

func buildRetryCallback(surah int) string {
	return callbackData{
		Action: actionRetry,
		Params: []string{strconv.Itoa(surah)},
	}.encode()
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}
