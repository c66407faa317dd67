package model

// Category is an attack category key as used by the stats feed.
type Category string

const (
	CategoryBruteForce Category = "brute_force"
	CategoryDDoS       Category = "ddos"
	CategoryPortScan   Category = "port_scan"
	CategoryMalware    Category = "malware"
	CategoryNormal     Category = "normal"
)

// CategoryCount is the number of recognized categories.
const CategoryCount = 5

// CategoryInfo describes how a category is displayed.
type CategoryInfo struct {
	Key   Category
	Label string
	Color string
}

// Categories lists the recognized categories in fixed display order.
var Categories = [CategoryCount]CategoryInfo{
	{Key: CategoryBruteForce, Label: "Brute Force", Color: "#FF3B3B"},
	{Key: CategoryDDoS, Label: "DDoS", Color: "#FFD700"},
	{Key: CategoryPortScan, Label: "Port Scan", Color: "#00BFFF"},
	{Key: CategoryMalware, Label: "Malware", Color: "#FF00FF"},
	{Key: CategoryNormal, Label: "Normal", Color: "#00FF9F"},
}

// CategoryIndex returns the display slot of key, or -1 when it is not recognized.
func CategoryIndex(key string) int {
	for i, c := range Categories {
		if string(c.Key) == key {
			return i
		}
	}
	return -1
}
