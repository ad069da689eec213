package gemini

import "fmt"

const extractionPrompt = `Analise esta imagem de receita de hambúrguer. Extraia o nome, o percentual de gordura ideal (0-1), a lista de carnes utilizadas e suas proporções relativas entre si (soma=1), o peso por unidade em gramas e o método de moagem, se houver.

Retorne APENAS JSON no formato:
{
  "name": "Nome do blend",
  "fatRatio": 0.20,
  "meats": [{"name": "Corte de carne", "ratio": 0.5}, {"name": "Outro corte", "ratio": 0.5}],
  "unitWeight": 150,
  "grindMethod": "Moído 2x no disco médio"
}`

const searchPromptTemplate = `Você é um especialista mundial em hambúrgueres artesanais. Pesquise blends reais e reconhecidos para a categoria: "%s".

IMPORTANTE: Retorne APENAS um array JSON válido com 8 a 10 objetos, sem texto adicional.

Cada objeto DEVE ter exatamente esta estrutura:
{
  "name": "Nome do blend ou restaurante famoso",
  "description": "Breve explicação técnica do blend",
  "fatRatio": 0.20,
  "meats": [{"name": "Corte de carne", "ratio": 0.5}, {"name": "Outro corte", "ratio": 0.5}]
}

Exemplos de blends conhecidos: Shake Shack, In-N-Out, Five Guys, Pat LaFrieda, Z Deli, Madero, etc.
Retorne APENAS o JSON, começando com [ e terminando com ].`

func searchPrompt(query string) string {
	return fmt.Sprintf(searchPromptTemplate, query)
}

// extractionSchema constrains the structured output of the extraction call
var extractionSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"name":     map[string]any{"type": "STRING"},
		"fatRatio": map[string]any{"type": "NUMBER", "description": "Percentual de gordura (0-1)"},
		"meats": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"name":  map[string]any{"type": "STRING"},
					"ratio": map[string]any{"type": "NUMBER", "description": "Proporção relativa entre as carnes (soma deve ser 1)"},
				},
			},
		},
		"unitWeight":  map[string]any{"type": "NUMBER"},
		"grindMethod": map[string]any{"type": "STRING"},
	},
	"required": []string{"name", "fatRatio", "meats", "unitWeight"},
}
