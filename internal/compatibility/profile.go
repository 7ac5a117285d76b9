package compatibility

import "github.com/farol-inclusivo/farol-matcher/internal/farol"

const defaultExperienceSummary = "Desenvolvedor backend Python com 4 anos de experiência em Django, " +
	"FastAPI, PostgreSQL, Redis, Docker, AWS. Conhecimento em testes automatizados, APIs REST, " +
	"microserviços e CI/CD. Experiência com metodologias ágeis e trabalho remoto."

// DefaultProfile is the persona scored against when no candidate profile is
// available: a four-year Python backend developer in São Paulo.
func DefaultProfile() *farol.Profile {
	return &farol.Profile{
		FirstName:         "Programador",
		LastName:          "Python",
		HasDisability:     false,
		ExperienceSummary: defaultExperienceSummary,
		Location:          "São Paulo, SP",
	}
}
