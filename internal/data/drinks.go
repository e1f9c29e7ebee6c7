// Package data holds the static drink catalogs served to the profile and
// BAC-calculator UIs.
package data

// DrinkTypes lists the alcohol categories.
var DrinkTypes = []string{
	"Beer",
	"Wine",
	"Whiskey",
	"Vodka",
	"Gin",
	"Rum",
	"Tequila",
	"Brandy",
	"Cognac",
	"Cocktails",
	"Liqueurs",
	"Sake",
	"Soju",
	"Absinthe",
	"Mead",
	"Cider",
}

// CzechBeers lists Czech beer brands.
var CzechBeers = []string{
	"Pilsner Urquell",
	"Gambrinus",
	"Radegast",
	"Staropramen",
	"Kozel",
	"Budvar",
	"Bernard",
	"Krušovice",
	"Regent",
	"Primátor",
	"Matuška",
	"Únětické",
	"Vyškov",
	"Kout na Šumavě",
	"Chodovar",
	"Svijany",
	"Herold",
	"Lobkowicz",
	"Pardál",
	"Zubr",
	"Holba",
	"Litovel",
	"Jihlava",
	"Černá Hora",
	"Březňák",
	"Platan",
	"Klášter",
	"Louny",
	"Rohozec",
}

// AlcoholicDrinks lists popular drinks for the favorites selector.
var AlcoholicDrinks = []string{
	"Pilsner",
	"Lager",
	"IPA",
	"Stout",
	"Wheat Beer",
	"Ale",
	"Porter",
	"Red Wine",
	"White Wine",
	"Rosé",
	"Champagne",
	"Prosecco",
	"Sparkling Wine",
	"Whiskey",
	"Bourbon",
	"Scotch",
	"Vodka",
	"Gin",
	"Rum",
	"Tequila",
	"Brandy",
	"Cognac",
	"Mojito",
	"Margarita",
	"Old Fashioned",
	"Martini",
	"Negroni",
	"Manhattan",
	"Daiquiri",
	"Cosmopolitan",
	"Piña Colada",
	"Amaretto",
	"Baileys",
	"Kahlúa",
	"Cointreau",
	"Jägermeister",
	"Limoncello",
	"Sake",
	"Soju",
	"Absinthe",
	"Mead",
	"Cider",
}
