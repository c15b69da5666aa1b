package news

import "fmt"

// MaxLength is the hard cap, in characters, on a generated message.
const MaxLength = 100

const defaultName = "Cliente"

const promptTemplate = "Você é um especialista em marketing bancário.\n" +
	"Crie uma mensagem para %s sobre a importância dos investimentos " +
	"(máximo de %d caracteres)."

// BuildPrompt returns the generation prompt for a customer called name.
func BuildPrompt(name string) string {
	return fmt.Sprintf(promptTemplate, displayName(name), MaxLength)
}

// Fallback is the message used when the service fails or returns nothing.
func Fallback(name string) string {
	return fmt.Sprintf("%s, investir com consistência fortalece seu futuro financeiro.", displayName(name))
}

func displayName(name string) string {
	if name == "" {
		return defaultName
	}
	return name
}
