package engine

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/models"
)

// KeywordRule is one ordered entry of the deterministic rule table. A rule
// fires when any keyword occurs in the lowered text; when RequireAll groups
// are present, every group must contribute at least one hit (used for the
// mail rule, which needs a service term and a failure term together).
type KeywordRule struct {
	ID         string          `yaml:"id"`
	Category   models.Category `yaml:"category"`
	Keywords   []string        `yaml:"keywords"`
	RequireAll [][]string      `yaml:"requireAll"`
}

// Knowledge bundles the static configuration the matchers and composer run
// on: rule table, FAQ entries, urgency triggers, response templates and
// follow-up questions. Built once at startup, read-only afterwards.
type Knowledge struct {
	Rules           []KeywordRule                `yaml:"rules"`
	Faqs            []models.FaqEntry            `yaml:"faqs"`
	UrgencyTriggers []string                     `yaml:"urgencyTriggers"`
	Templates       map[models.Category]string   `yaml:"templates"`
	FollowUps       map[models.Category][]string `yaml:"followUps"`
}

// LoadKnowledge returns the built-in knowledge pack, overlaid with the YAML
// pack at path when one is configured. A missing file at an explicit path is
// an error; an empty path means defaults only.
func LoadKnowledge(path string) (*Knowledge, error) {
	kn := DefaultKnowledge()
	if path == "" {
		return kn, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("knowledge pack %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("read knowledge pack: %w", err)
	}

	var override Knowledge
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse knowledge pack: %w", err)
	}

	if len(override.Rules) > 0 {
		kn.Rules = override.Rules
	}
	if len(override.Faqs) > 0 {
		kn.Faqs = override.Faqs
	}
	if len(override.UrgencyTriggers) > 0 {
		kn.UrgencyTriggers = override.UrgencyTriggers
	}
	for cat, tpl := range override.Templates {
		kn.Templates[cat] = tpl
	}
	for cat, qs := range override.FollowUps {
		kn.FollowUps[cat] = qs
	}
	return kn, nil
}

// DefaultKnowledge is the compiled-in pack serving the Nebrija help desk.
func DefaultKnowledge() *Knowledge {
	return &Knowledge{
		Rules: []KeywordRule{
			{
				ID:       "matricula",
				Category: models.CategoryEnrollment,
				Keywords: []string{
					"matrícula", "matricula", "matricularme", "matricularse",
					"pagar tasas", "pago de tasas", "tasas", "automatrícula", "automatricula",
				},
			},
			{
				ID:       "secretaria",
				Category: models.CategoryAdministrative,
				Keywords: []string{
					"secretaría", "secretaria", "certificado", "expediente",
					"trámite", "tramite", "convalidación", "convalidacion",
					"beca", "normativa", "instancia",
				},
			},
			{
				ID:       "correo-caido",
				Category: models.CategoryTechnical,
				RequireAll: [][]string{
					{"correo", "email", "outlook", "webmail"},
					{"no funciona", "no me funciona", "falla", "error", "no envía", "no envia", "no recibo", "no llega", "caído", "caido"},
				},
			},
		},
		Faqs: []models.FaqEntry{
			{
				Intent: "wifi",
				Patterns: []string{
					`\bwifi\b`, `\beduroam\b`, `red inal[aá]mbrica`,
				},
				Answer: "Para conectarte a la red del campus usa **eduroam** con tu usuario completo (nombre@alumnos.nebrija.es) y tu contraseña habitual. Si la red no aparece o falla tras un cambio de contraseña, olvida la red y vuelve a configurarla.",
				Links: []models.FaqLink{
					{Text: "Guía de conexión eduroam", URL: "https://www.nebrija.com/servicios/eduroam"},
					{Text: "Soporte TIC", URL: "https://soporte.nebrija.es"},
				},
			},
			{
				Intent: "horario biblioteca",
				Patterns: []string{
					`horario.*biblioteca`, `biblioteca.*(horario|abre|cierra)`,
				},
				Answer: "La biblioteca abre de lunes a viernes de 9:00 a 21:00 y sábados de 10:00 a 14:00. En periodo de exámenes el horario se amplía; consulta el calendario actualizado en el portal.",
				Links: []models.FaqLink{
					{Text: "Portal de biblioteca", URL: "https://www.nebrija.com/biblioteca"},
				},
			},
			{
				Intent: "carnet",
				Patterns: []string{
					`carn[eé]t universitario`, `tarjeta universitaria`, `carn[eé]t de estudiante`,
				},
				Answer: "El carnet universitario se solicita desde el portal del alumno (Mis datos → Carnet). La primera emisión es gratuita y se recoge en secretaría de alumnos en unos 10 días laborables.",
				Links: []models.FaqLink{
					{Text: "Portal del alumno", URL: "https://portal.nebrija.es"},
				},
			},
		},
		UrgencyTriggers: []string{
			"bloqueada", "bloqueado", "no puedo entrar", "no puedo acceder",
			"urgente", "urgencia", "inmediato", "cuanto antes",
			"hoy", "ahora", "mañana", "manana",
			"examen", "entrega", "plazo", "fecha límite", "fecha limite",
		},
		Templates: map[models.Category]string{
			models.CategoryAccess:         "Te recomiendo probar: modo incógnito, revisar credenciales y restablecer contraseña si es necesario.",
			models.CategoryEnrollment:     "Indica en qué paso ocurre (confirmación/pago/asignaturas) y el mensaje de error. Si procede, abre ticket con captura.",
			models.CategoryBlockedAccount: "Prueba restablecer la contraseña. Si sigue igual, solicita desbloqueo a Soporte.",
			models.CategoryAdministrative: "Suele resolverse consultando portal del alumno/normativa. Si me dices el trámite concreto, te digo dónde mirarlo.",
			models.CategoryTechnical:      "Dime qué aplicación falla, desde cuándo y dispositivo/navegador para orientar mejor el ticket.",
			models.CategoryOther:          "No estoy seguro al 100%. Si me das más detalle (sistema, error, contexto), lo clasificaré mejor.",
		},
		FollowUps: map[models.Category][]string{
			models.CategoryAccess: {
				"¿A qué plataforma intentas acceder (portal, campus virtual, correo)?",
				"¿Qué mensaje de error ves exactamente?",
			},
			models.CategoryEnrollment: {
				"¿En qué paso de la matrícula aparece el problema?",
				"¿Te muestra algún código o mensaje de error?",
			},
			models.CategoryBlockedAccount: {
				"¿Desde cuándo está bloqueada la cuenta?",
				"¿Has intentado ya restablecer la contraseña?",
			},
			models.CategoryAdministrative: {
				"¿Qué trámite concreto necesitas realizar?",
				"¿Has consultado ya el portal del alumno?",
			},
			models.CategoryTechnical: {
				"¿Qué aplicación o servicio falla?",
				"¿Desde qué dispositivo y navegador lo usas?",
			},
			models.CategoryOther: {
				"¿Qué sistema o servicio está implicado?",
				"¿Cuándo empezó a pasar?",
				"¿Puedes copiar el mensaje de error, si lo hay?",
			},
		},
	}
}
