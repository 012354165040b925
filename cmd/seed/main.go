package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/learn2grow/internal/config"
	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
	"github.com/dropDatabas3/learn2grow/internal/store"

	_ "github.com/dropDatabas3/learn2grow/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/learn2grow/internal/store/adapters/pg"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path al config YAML (default: env CONFIG_PATH)")
		hashOnly   = flag.String("hash-password", "", "Imprimir el hash PHC del password y salir (para ADMIN_PASSWORD_HASH)")
	)
	flag.Parse()

	if *hashOnly != "" {
		phc, err := password.Hash(password.DefaultParams, *hashOnly)
		if err != nil {
			log.Fatalf("hash: %v", err)
		}
		fmt.Println(phc)
		return
	}

	_ = godotenv.Load()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name: adapterName(cfg.Storage.Driver),
		DSN:  cfg.Storage.DSN,
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer conn.Close()

	phc, err := password.Hash(password.DefaultParams, "Learn2Grow-demo-1!")
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	// Solicitudes de ejemplo en los tres estados.
	for _, in := range []repository.CreateRequestInput{
		{Name: "Ana García", Email: "ana@example.org", PasswordHash: phc},
		{Name: "Bruno Díaz", Email: "bruno@example.org", PasswordHash: phc},
		{Name: "Carla Pérez", Email: "carla@example.org", PasswordHash: phc},
	} {
		req, err := conn.Requests().Create(ctx, in)
		if err != nil {
			if repository.IsConflict(err) {
				log.Printf("request %s ya existe, salteando", in.Email)
				continue
			}
			log.Fatalf("create request %s: %v", in.Email, err)
		}
		log.Printf("request %s creada (%s)", req.Email, req.ID)
	}

	sp, err := conn.Sponsors().Create(ctx, repository.CreateSponsorInput{
		Name:         "Fundación Demo",
		Email:        "sponsor@example.org",
		PasswordHash: phc,
	})
	if err != nil {
		if repository.IsConflict(err) {
			log.Println("sponsor ya existe, salteando")
		} else {
			log.Fatalf("create sponsor: %v", err)
		}
	} else {
		log.Printf("sponsor %s creado (%s)", sp.Email, sp.ID)

		post, err := conn.Posts().Create(ctx, repository.CreatePostInput{
			AuthorID:   sp.ID,
			AuthorRole: repository.RoleSponsor,
			Title:      "Becas de materiales escolares",
			Body:       "Ofrecemos kits de útiles para estudiantes de primaria.",
		})
		if err != nil {
			log.Fatalf("create post: %v", err)
		}
		log.Printf("post %q creado (%s)", post.Title, post.ID)
	}

	log.Println("seed completado")
}

func adapterName(driver string) string {
	if driver == "pg" {
		return "postgres"
	}
	return driver
}
