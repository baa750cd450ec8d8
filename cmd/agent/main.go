// RecipeTalk agent entry point.
package main

import (
	"github.com/recipetalk/v1/internal/infrastructure/container"
	"go.uber.org/fx"
)

func main() {
	fx.New(container.Module).Run()
}
