package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"festflow/common/database"
	"festflow/internal/config"
	"festflow/internal/repository"
)

// 不带参数时应用内置 schema；带参数时执行给定 SQL 文件
// 文件整体一次 Exec，函数体内的 ';' 不做拆分
func main() {
	sqlContent := repository.Schema
	source := "built-in schema"
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to read migration file: %v", err)
		}
		sqlContent = string(data)
		source = os.Args[1]
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n", cfg.Database.Database)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Printf("Applying %s...\n", source)
	if _, err := db.ExecContext(ctx, sqlContent); err != nil {
		log.Fatalf("Failed to apply %s: %v", source, err)
	}

	// 校验核心表
	tables := []string{
		"fests", "events", "colleges", "clubs", "participants", "teams",
		"team_members", "team_events", "rooms", "room_occupancy", "room_reservations",
	}
	missing := 0
	for _, table := range tables {
		var exists bool
		err := db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = current_schema() AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			log.Fatalf("Failed to check table %s: %v", table, err)
		}
		if exists {
			fmt.Printf("✅ %s\n", table)
		} else {
			fmt.Printf("❌ %s does NOT exist\n", table)
			missing++
		}
	}
	if missing > 0 {
		log.Fatalf("%d table(s) missing after migration", missing)
	}

	fmt.Println("✅ Migration completed successfully!")
}
