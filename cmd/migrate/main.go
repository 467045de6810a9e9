package main

import (
	"log"
	"os"
	"time"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/mapper"
	"dorm-assistant-be/internal/model"
	"dorm-assistant-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Starting GORM Migration...")

	// 2. Extensions (GORM AutoMigrate doesn't handle these)
	color.Yellow("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 3. AutoMigrate models
	color.Yellow("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.KnowledgeItem{},
		&model.KnowledgeEmbedding{},
		&model.Session{},
		&model.ConversationTurn{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Vector index for similarity search
	color.Yellow("Step 3: Creating vector index...")
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_knowledge_embeddings_vector
		ON knowledge_embeddings USING hnsw (embedding_value vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		color.Red("Warn: Failed to create vector index: %v. Continuing...", err)
	}

	// 5. Seed the starter knowledge base
	color.Yellow("Step 4: Seeding knowledge base...")
	seedKnowledge(db)

	color.Green("Migration complete.")
}

type seedItem struct {
	text     string
	category string
	tags     []string
}

var seedItems = []seedItem{
	{
		text:     "Dormitory address: Moskvorechye street 2, building 3. Nearest metro station is Kantemirovskaya, ten minutes on foot.",
		category: "general",
		tags:     []string{"address", "location", "metro"},
	},
	{
		text:     "The laundry room is on the first floor next to the gym. It is open from 8:00 to 22:00. Bring your own detergent; machines take tokens sold at the front desk.",
		category: "facilities",
		tags:     []string{"laundry", "washing"},
	},
	{
		text:     "Wifi network name is DORM-NET. The password is printed on your check-in sheet. For connection problems contact the IT office in room 105.",
		category: "facilities",
		tags:     []string{"wifi", "internet"},
	},
	{
		text:     "Quiet hours are from 23:00 to 7:00 on weekdays and from 24:00 to 8:00 on weekends. Repeated violations are reported to the dormitory council.",
		category: "rules",
		tags:     []string{"quiet", "noise", "rules"},
	},
	{
		text:     "Guests may visit between 10:00 and 22:00 and must leave an ID card at the front desk. Overnight guests require a written request to the administration two days in advance.",
		category: "rules",
		tags:     []string{"guests", "visitors"},
	},
	{
		text:     "Monthly rent is due before the 5th of each month. Pay at the accounting office in room 210 or by bank transfer using the details from your contract.",
		category: "payments",
		tags:     []string{"rent", "payment"},
	},
	{
		text:     "For maintenance problems such as plumbing or electricity, file a request at the front desk or call extension 112. Urgent issues are handled around the clock.",
		category: "maintenance",
		tags:     []string{"repair", "plumbing", "electricity"},
	},
}

func seedKnowledge(db *gorm.DB) {
	var count int64
	if err := db.Model(&model.KnowledgeItem{}).Count(&count).Error; err != nil {
		color.Red("Warn: Failed to count knowledge items: %v. Skipping seed.", err)
		return
	}
	if count > 0 {
		color.Yellow("Knowledge base already has %d items, skipping seed.", count)
		return
	}

	km := mapper.NewKnowledgeMapper()
	for _, item := range seedItems {
		e := &entity.KnowledgeItem{
			Text:      item.text,
			Category:  item.category,
			Tags:      item.tags,
			CreatedAt: time.Now(),
		}
		m := km.ItemToModel(e)
		m.Id = 0 // let the sequence assign
		if err := db.Create(m).Error; err != nil {
			color.Red("Warn: Failed to seed item %q: %v", item.category, err)
		}
	}
	color.Green("Seeded %d knowledge items.", len(seedItems))
}
