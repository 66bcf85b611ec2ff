// @title           Grading RAG API
// @version         1.0
// @description     Ingests model answers and student submissions into a vector index and grades submissions with retrieved context.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"os"

	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger_i.NewLogger("main").Error("command failed", "error", err)
		os.Exit(1)
	}
}
