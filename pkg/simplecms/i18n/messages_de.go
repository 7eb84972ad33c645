package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.German

	message.SetString(lang, SubmitKey, "Speichern")
	message.SetString(lang, ListAddKey, "Hinzufügen")
	message.SetString(lang, EditTitleKey, "%s bearbeiten")
	message.SetString(lang, CreateTitleKey, "%s erstellen")
	message.SetString(lang, DeleteKey, "Löschen")
	message.SetString(lang, ImageAltTextKey, "Alternativtext")
	message.SetString(lang, GoBackKey, "Zurück")
	message.SetString(lang, ErrorTitleKey, "Etwas ist schiefgelaufen")
	message.SetString(lang, NotFoundTitleKey, "Nicht gefunden")
}
