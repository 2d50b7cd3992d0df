package lexicon

// userRulePriority is assigned to file-loaded rules without an explicit
// priority so they always outrank the built-ins.
const userRulePriority = 50

// defaultRules is the built-in merchant lexicon. Tokens are matched as
// substrings of the lowercased description and merchant name.
var defaultRules = []Rule{
	// Streaming and entertainment
	{MatchToken: "netflix", Category: "Entertainment", Subcategory: "Streaming", Priority: 10},
	{MatchToken: "spotify", Category: "Entertainment", Subcategory: "Streaming", Priority: 10},
	{MatchToken: "disney+", Category: "Entertainment", Subcategory: "Streaming", Priority: 10},
	{MatchToken: "hulu", Category: "Entertainment", Subcategory: "Streaming", Priority: 10},
	{MatchToken: "hbo max", Category: "Entertainment", Subcategory: "Streaming", Priority: 10},
	{MatchToken: "audible", Category: "Entertainment", Subcategory: "Audiobooks", Priority: 10},
	{MatchToken: "steam", Category: "Entertainment", Subcategory: "Gaming", Priority: 5},
	{MatchToken: "playstation", Category: "Entertainment", Subcategory: "Gaming", Priority: 10},
	{MatchToken: "cinema", Category: "Entertainment", Subcategory: "Movies"},

	// Groceries
	{MatchToken: "whole foods", Category: "Groceries", Subcategory: "Supermarket", Priority: 10},
	{MatchToken: "trader joe", Category: "Groceries", Subcategory: "Supermarket", Priority: 10},
	{MatchToken: "safeway", Category: "Groceries", Subcategory: "Supermarket", Priority: 10},
	{MatchToken: "kroger", Category: "Groceries", Subcategory: "Supermarket", Priority: 10},
	{MatchToken: "aldi", Category: "Groceries", Subcategory: "Supermarket", Priority: 10},
	{MatchToken: "grocery", Category: "Groceries"},
	{MatchToken: "supermarket", Category: "Groceries", Subcategory: "Supermarket"},

	// Dining
	{MatchToken: "starbucks", Category: "Dining", Subcategory: "Coffee", Priority: 10},
	{MatchToken: "mcdonald", Category: "Dining", Subcategory: "Fast Food", Priority: 10},
	{MatchToken: "chipotle", Category: "Dining", Subcategory: "Fast Food", Priority: 10},
	{MatchToken: "doordash", Category: "Dining", Subcategory: "Delivery", Priority: 10},
	{MatchToken: "uber eats", Category: "Dining", Subcategory: "Delivery", Priority: 15},
	{MatchToken: "grubhub", Category: "Dining", Subcategory: "Delivery", Priority: 10},
	{MatchToken: "restaurant", Category: "Dining"},
	{MatchToken: "coffee", Category: "Dining", Subcategory: "Coffee"},
	{MatchToken: "pizza", Category: "Dining"},

	// Transport
	{MatchToken: "uber", Category: "Transport", Subcategory: "Rideshare", Priority: 10},
	{MatchToken: "lyft", Category: "Transport", Subcategory: "Rideshare", Priority: 10},
	{MatchToken: "shell", Category: "Transport", Subcategory: "Fuel", Priority: 5},
	{MatchToken: "chevron", Category: "Transport", Subcategory: "Fuel", Priority: 10},
	{MatchToken: "exxon", Category: "Transport", Subcategory: "Fuel", Priority: 10},
	{MatchToken: "parking", Category: "Transport", Subcategory: "Parking"},
	{MatchToken: "transit", Category: "Transport", Subcategory: "Public Transit"},
	{MatchToken: "airlines", Category: "Travel", Subcategory: "Flights"},
	{MatchToken: "airbnb", Category: "Travel", Subcategory: "Lodging", Priority: 10},
	{MatchToken: "hotel", Category: "Travel", Subcategory: "Lodging"},

	// Shopping
	{MatchToken: "amazon", Category: "Shopping", Subcategory: "Online", Priority: 10},
	{MatchToken: "target", Category: "Shopping", Subcategory: "Department Store", Priority: 5},
	{MatchToken: "walmart", Category: "Shopping", Subcategory: "Department Store", Priority: 10},
	{MatchToken: "best buy", Category: "Shopping", Subcategory: "Electronics", Priority: 10},
	{MatchToken: "ikea", Category: "Shopping", Subcategory: "Home", Priority: 10},
	{MatchToken: "etsy", Category: "Shopping", Subcategory: "Online", Priority: 10},

	// Utilities and housing
	{MatchToken: "electric", Category: "Utilities", Subcategory: "Electricity"},
	{MatchToken: "water bill", Category: "Utilities", Subcategory: "Water"},
	{MatchToken: "comcast", Category: "Utilities", Subcategory: "Internet", Priority: 10},
	{MatchToken: "verizon", Category: "Utilities", Subcategory: "Phone", Priority: 10},
	{MatchToken: "t-mobile", Category: "Utilities", Subcategory: "Phone", Priority: 10},
	{MatchToken: "internet", Category: "Utilities", Subcategory: "Internet"},
	{MatchToken: "rent", Category: "Housing", Subcategory: "Rent"},
	{MatchToken: "mortgage", Category: "Housing", Subcategory: "Mortgage", Priority: 10},

	// Health and fitness
	{MatchToken: "pharmacy", Category: "Health", Subcategory: "Pharmacy"},
	{MatchToken: "walgreens", Category: "Health", Subcategory: "Pharmacy", Priority: 10},
	{MatchToken: "cvs", Category: "Health", Subcategory: "Pharmacy", Priority: 10},
	{MatchToken: "gym", Category: "Health", Subcategory: "Fitness"},
	{MatchToken: "planet fitness", Category: "Health", Subcategory: "Fitness", Priority: 10},
	{MatchToken: "dental", Category: "Health", Subcategory: "Dental"},

	// Software and services
	{MatchToken: "github", Category: "Software", Subcategory: "Developer Tools", Priority: 10},
	{MatchToken: "dropbox", Category: "Software", Subcategory: "Cloud Storage", Priority: 10},
	{MatchToken: "icloud", Category: "Software", Subcategory: "Cloud Storage", Priority: 10},
	{MatchToken: "google storage", Category: "Software", Subcategory: "Cloud Storage", Priority: 10},
	{MatchToken: "adobe", Category: "Software", Subcategory: "Creative", Priority: 10},

	// Insurance and finance
	{MatchToken: "insurance", Category: "Insurance"},
	{MatchToken: "geico", Category: "Insurance", Subcategory: "Auto", Priority: 10},
	{MatchToken: "atm fee", Category: "Fees", Subcategory: "ATM", Priority: 10},
	{MatchToken: "overdraft", Category: "Fees", Subcategory: "Bank", Priority: 10},
	{MatchToken: "interest charge", Category: "Fees", Subcategory: "Interest", Priority: 10},
}
