// Package i18n translates the UI strings. The language comes from
// COMBOPAD_LANG when set, otherwise from the system locale.
package i18n

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jeandeaual/go-locale"
)

// EnvLang forces the UI language.
const EnvLang = "COMBOPAD_LANG"

var (
	mu   sync.RWMutex
	lang = "en"
)

var supported = []string{"pt", "es", "ru"}

var translations = map[string]map[string]string{
	"Cancel": {
		"pt": "Cancelar",
		"es": "Cancelar",
		"ru": "Отмена",
	},
	"Advanced": {
		"pt": "Avançado",
		"es": "Avanzado",
		"ru": "Продвинутое",
	},
	"Scale": {
		"pt": "Escala",
		"es": "Escala",
		"ru": "Масштаб",
	},
	"Ready": {
		"pt": "Pronto",
		"es": "Listo",
		"ru": "Готово",
	},
	"Running %s %s": {
		"pt": "Executando %s %s",
		"es": "Ejecutando %s %s",
		"ru": "Выполняется %s %s",
	},
	"Completed": {
		"pt": "Concluído",
		"es": "Completado",
		"ru": "Завершено",
	},
	"Cancelled": {
		"pt": "Cancelado",
		"es": "Cancelado",
		"ru": "Отменено",
	},
	"Failed: %s": {
		"pt": "Falhou: %s",
		"es": "Falló: %s",
		"ru": "Ошибка: %s",
	},
	"Busy, request ignored": {
		"pt": "Ocupado, pedido ignorado",
		"es": "Ocupado, solicitud ignorada",
		"ru": "Занято, запрос пропущен",
	},
	"Log": {
		"pt": "Registro",
		"es": "Registro",
		"ru": "Журнал",
	},
	"Dry run: no virtual gamepad": {
		"pt": "Simulação: sem controle virtual",
		"es": "Simulación: sin mando virtual",
		"ru": "Пробный режим: нет виртуального геймпада",
	},
	"Profile %s": {
		"pt": "Perfil %s",
		"es": "Perfil %s",
		"ru": "Профиль %s",
	},
}

func init() {
	SetLang(detect())
}

func detect() string {
	if forced := strings.TrimSpace(os.Getenv(EnvLang)); forced != "" {
		log.Printf("%s is set to: '%s'", EnvLang, forced)
		return Match(forced)
	}

	userLocales, err := locale.GetLocales()
	if err != nil || len(userLocales) == 0 {
		log.Println("No user locale detected, defaulting to english")
		return "en"
	}
	log.Printf("Detected user locale: %s", userLocales[0])
	return Match(userLocales[0])
}

// Match returns the supported language for a locale such as "pt_BR" or
// "es-419", or "en".
func Match(loc string) string {
	loc = strings.ToLower(strings.TrimSpace(loc))
	for _, l := range supported {
		if strings.HasPrefix(loc, l) {
			return l
		}
	}
	return "en"
}

// SetLang switches the language.
func SetLang(l string) {
	mu.Lock()
	lang = l
	mu.Unlock()
}

// GetLang returns the active language.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return lang
}

// T translates key, falling back to the key itself.
func T(key string) string {
	if translated, ok := translations[key][GetLang()]; ok {
		return translated
	}
	return key
}

// Tf translates a format key and applies args.
func Tf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}
