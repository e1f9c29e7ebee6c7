package handler

import (
	"net/http"

	"drinkbuddies/backend/internal/data"

	"github.com/gin-gonic/gin"
)

// GetDrinkTypes returns the drink categories used in profiles.
func GetDrinkTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"drink_types": data.DrinkTypes})
}

// GetCzechBeers returns the curated Czech beer list.
func GetCzechBeers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"czech_beers": data.CzechBeers})
}

// GetAlcoholicDrinks returns the full drink catalogue.
func GetAlcoholicDrinks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alcoholic_drinks": data.AlcoholicDrinks})
}
