package services

import "errors"

// Pipeline error taxonomy. Each stage wraps one of these sentinels so the
// result endpoint can map any failure to a distinct user-facing message.
var (
	ErrUnsupportedFormat        = errors.New("unsupported document format")
	ErrCorruptDocument          = errors.New("corrupt document")
	ErrEngineNotReady           = errors.New("recognition engine not ready")
	ErrEmptyInput               = errors.New("empty input text")
	ErrExtractionService        = errors.New("extraction service error")
	ErrMalformedBackendResponse = errors.New("malformed backend response")
	ErrNetworkTimeout           = errors.New("network timeout")
)

// UserMessage maps a pipeline error to a French, non-technical message.
// Raw error details stay in the logs.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "Format de fichier non pris en charge. Veuillez téléverser une image ou un PDF."
	case errors.Is(err, ErrCorruptDocument):
		return "Le document n'a pas pu être lu. Le fichier est peut-être corrompu ou protégé par mot de passe."
	case errors.Is(err, ErrEngineNotReady):
		return "Le moteur de reconnaissance n'est pas encore prêt. Veuillez réessayer dans un instant."
	case errors.Is(err, ErrEmptyInput):
		return "Aucun texte n'a pu être lu sur le document."
	case errors.Is(err, ErrExtractionService):
		return "Le service d'extraction des informations est indisponible. Veuillez réessayer plus tard."
	case errors.Is(err, ErrMalformedBackendResponse):
		return "Le service de vérification a renvoyé une réponse inattendue. Veuillez réessayer plus tard."
	case errors.Is(err, ErrNetworkTimeout):
		return "Le délai de traitement a été dépassé. Veuillez réessayer."
	default:
		return "Une erreur est survenue lors du traitement du diplôme. Veuillez réessayer."
	}
}
