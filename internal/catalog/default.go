package catalog

import "github.com/shopspring/decimal"

var defaultItems = []struct {
	name     string
	category string
	price    string
}{
	{"A4 paper", CategoryPaper, "0.05"},
	{"Letter-sized paper", CategoryPaper, "0.06"},
	{"Cardstock", CategoryPaper, "0.15"},
	{"Colored paper", CategoryPaper, "0.10"},
	{"Glossy paper", CategoryPaper, "0.20"},
	{"Matte paper", CategoryPaper, "0.18"},
	{"Recycled paper", CategoryPaper, "0.08"},
	{"Eco-friendly paper", CategoryPaper, "0.12"},
	{"Poster paper", CategoryPaper, "0.25"},
	{"Banner paper", CategoryPaper, "0.30"},
	{"Kraft paper", CategoryPaper, "0.10"},
	{"Construction paper", CategoryPaper, "0.07"},
	{"Wrapping paper", CategoryPaper, "0.15"},
	{"Glitter paper", CategoryPaper, "0.22"},
	{"Decorative paper", CategoryPaper, "0.18"},
	{"Letterhead paper", CategoryPaper, "0.12"},
	{"Legal-size paper", CategoryPaper, "0.08"},
	{"Crepe paper", CategoryPaper, "0.05"},
	{"Photo paper", CategoryPaper, "0.25"},
	{"Uncoated paper", CategoryPaper, "0.06"},
	{"Butcher paper", CategoryPaper, "0.10"},
	{"Heavyweight paper", CategoryPaper, "0.20"},
	{"Standard copy paper", CategoryPaper, "0.04"},
	{"Bright-colored paper", CategoryPaper, "0.12"},
	{"Patterned paper", CategoryPaper, "0.15"},
	{"Paper plates", CategoryProduct, "0.10"},
	{"Paper cups", CategoryProduct, "0.08"},
	{"Paper napkins", CategoryProduct, "0.02"},
	{"Disposable cups", CategoryProduct, "0.10"},
	{"Table covers", CategoryProduct, "1.50"},
	{"Envelopes", CategoryProduct, "0.05"},
	{"Sticky notes", CategoryProduct, "0.03"},
	{"Notepads", CategoryProduct, "2.00"},
	{"Invitation cards", CategoryProduct, "0.50"},
	{"Flyers", CategoryProduct, "0.15"},
	{"Party streamers", CategoryProduct, "0.05"},
	{"Decorative adhesive tape (washi tape)", CategoryProduct, "0.20"},
	{"Paper party bags", CategoryProduct, "0.25"},
	{"Name tags with lanyards", CategoryProduct, "0.75"},
	{"Presentation folders", CategoryProduct, "0.50"},
	{"Large poster paper (24x36 inches)", CategoryLargeFormat, "1.00"},
	{"Rolls of banner paper (36-inch width)", CategoryLargeFormat, "2.50"},
	{"100 lb cover stock", CategorySpecialty, "0.50"},
	{"80 lb text paper", CategorySpecialty, "0.40"},
	{"250 gsm cardstock", CategorySpecialty, "0.30"},
	{"220 gsm poster paper", CategorySpecialty, "0.35"},
}

// Default returns the paper-supply reference catalog.
func Default() *Catalog {
	items := make([]Item, 0, len(defaultItems))
	for _, row := range defaultItems {
		items = append(items, Item{
			Name:      row.name,
			Category:  row.category,
			UnitPrice: decimal.RequireFromString(row.price),
		})
	}
	c, err := New(items)
	if err != nil {
		panic(err)
	}
	return c
}
