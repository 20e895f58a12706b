// models/challenge.go
package models

import "time"

// Challenge is an admin-managed virtual race that runners can submit completions for.
type Challenge struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	Badge       string `json:"badge,omitempty"`
	Highlight   string `json:"highlight,omitempty"`
	IsActive    bool   `json:"is_active" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Challenge) TableName() string {
	return "admin_challenges"
}

// SeedChallenges is the launch catalogue, inserted when the registry table is empty.
var SeedChallenges = []Challenge{
	{
		Slug:        "hulk-desafio",
		Name:        "Desafio do Hulk",
		Description: "Percurso de força inspirado no Hulk para desafiar sua resistência.",
		Badge:       "Série Especial",
		Highlight:   "Percurso livre",
	},
	{
		Slug:        "thor-novembro-25",
		Name:        "Desafio Thor Novembro 25",
		Description: "Percurso heróico inspirado no Deus do Trovão para você fechar novembro com força total.",
		Badge:       "Novembro 2025",
		Highlight:   "Modalidades 5K / 10K",
	},
	{
		Slug:        "flash-dezembro-25",
		Name:        "Desafio Flash Dezembro 25",
		Description: "Sprint final do ano com provas eletrizantes para encerrar a temporada com velocidade.",
		Badge:       "Dezembro 2025",
		Highlight:   "Modalidades 5K / 10K",
	},
	{
		Slug:        "marco-especial-26",
		Name:        "Especial Superando Limites Março 26",
		Description: "Prova comemorativa dedicada à comunidade Desafio da Japa com percurso livre.",
		Badge:       "Março 2026",
		Highlight:   "Percurso livre",
	},
	{
		Slug:        "turno-ouro-japa",
		Name:        "Turno Ouro Desafio da Japa",
		Description: "Categoria exclusiva para quem concluiu toda a série Ouro e quer manter o ritmo.",
		Badge:       "Série Ouro",
		Highlight:   "Percurso livre",
	},
	{
		Slug:        "meia-superando",
		Name:        "Meia Maratona Superando Limites",
		Description: "21K para quem quer ir além na corrida virtual.",
		Badge:       "Distância oficial",
		Highlight:   "21K",
	},
}
