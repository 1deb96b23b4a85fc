package render

import (
	"ChatGateway/internal/service/conversation"
	"fmt"
	"strings"

	"github.com/tidwall/sjson"
)

// Ключи собираются через sjson: encoding/json сортирует ключи map, а здесь важен порядок.

func decoratedGenerate(res conversation.GenerateResult) ([]byte, error) {
	b := newObject()
	b.set("✅ "+Bold("Statut"), "Réponse générée avec succès")
	b.set("👤 "+Bold("Utilisateur"), res.UID)
	b.set("📝 "+Bold("Votre question"), res.Prompt)
	b.set("🤖 "+Bold("Reponse du modele"), res.Response)
	b.set("💬 "+Bold("Messages dans la conversation"), fmt.Sprintf("%d messages (%d échanges)", res.MessageCount, res.Exchanges))
	b.set("⏱️ "+Bold("Timestamp"), timestamp(res.Timestamp))
	if res.ImageURL != "" {
		b.set("🖼️ "+Bold("Image analysee"), res.ImageURL)
	}
	return b.bytes()
}

func decoratedReset(uid string) ([]byte, error) {
	b := newObject()
	b.set("✅ "+Bold("Succes"), "Conversation réinitialisée avec succès")
	b.set("👤 "+Bold("Utilisateur"), uid)
	b.set("🔄 "+Bold("Action"), "Historique effacé - Vous pouvez démarrer une nouvelle conversation")
	b.set("💡 "+Bold("Prochaine etape"), "Utilisez /generate?prompt=votre_message&uid="+uid)
	return b.bytes()
}

func decoratedEmbed(res conversation.EmbedResult) ([]byte, error) {
	b := newObject()
	b.set("✅ "+Bold("Statut"), "Embedding généré avec succès")
	b.set("👤 "+Bold("Utilisateur"), res.UID)
	b.set("📝 "+Bold("Votre texte"), res.Prompt)
	b.set("🤖 "+Bold("Modele"), res.Model)
	b.setRaw("📊 "+Bold("Output"), res.Output)
	b.set("⏱️ "+Bold("Timestamp"), timestamp(res.Timestamp))
	return b.bytes()
}

// object накапливает первую ошибку sjson, чтобы не проверять каждый вызов.
type object struct {
	buf []byte
	err error
}

func newObject() *object { return &object{buf: []byte(`{}`)} }

func (o *object) set(key string, value any) {
	if o.err != nil {
		return
	}
	o.buf, o.err = sjson.SetBytes(o.buf, escapeKey(key), value)
}

func (o *object) setRaw(key string, raw []byte) {
	if o.err != nil {
		return
	}
	if len(raw) == 0 {
		raw = []byte("null")
	}
	o.buf, o.err = sjson.SetRawBytes(o.buf, escapeKey(key), raw)
}

func (o *object) bytes() ([]byte, error) {
	return o.buf, o.err
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

// escapeKey экранирует символы, которые sjson трактует как синтаксис пути.
func escapeKey(key string) string {
	return pathEscaper.Replace(key)
}

// Bold переводит латиницу и цифры в математический жирный шрифт Unicode (sans-serif bold).
func Bold(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 0x1D5D4 + (r - 'A')
		case r >= 'a' && r <= 'z':
			return 0x1D5EE + (r - 'a')
		case r >= '0' && r <= '9':
			return 0x1D7EC + (r - '0')
		default:
			return r
		}
	}, s)
}
