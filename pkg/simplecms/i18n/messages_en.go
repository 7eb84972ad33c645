package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, SubmitKey, "Submit")
	message.SetString(lang, ListAddKey, "Add")
	message.SetString(lang, EditTitleKey, "Edit %s")
	message.SetString(lang, CreateTitleKey, "Create %s")
	message.SetString(lang, DeleteKey, "Delete")
	message.SetString(lang, ImageAltTextKey, "Alt text")
	message.SetString(lang, GoBackKey, "Go Back")
	message.SetString(lang, ErrorTitleKey, "Something went wrong")
	message.SetString(lang, NotFoundTitleKey, "Not found")
}
