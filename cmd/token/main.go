// token emite un JWT para consumir la API (no hay alta de usuarios en este servicio).
//
// Uso: go run ./cmd/token -user ana -role analyst
// Firma con JWT_SECRET y usa JWT_ISSUER / JWT_EXPIRATION_MINUTES de la configuración.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	httpRouter "github.com/jhoicas/receivables-commissions/internal/interfaces/http"
	"github.com/jhoicas/receivables-commissions/pkg/config"
	"github.com/jhoicas/receivables-commissions/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "identificador del usuario (por defecto un UUID)")
	company := flag.String("company", "", "empresa (opcional)")
	role := flag.String("role", httpRouter.RoleAnalyst, "rol: admin | analyst")
	flag.Parse()

	if *role != httpRouter.RoleAdmin && *role != httpRouter.RoleAnalyst {
		fmt.Fprintf(os.Stderr, "rol inválido: %q\n", *role)
		os.Exit(2)
	}
	if *user == "" {
		*user = uuid.NewString()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, jwt.Subject{UserID: *user, CompanyID: *company, Role: *role}, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
