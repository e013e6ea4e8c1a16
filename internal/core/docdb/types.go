package docdb

// Type represents the type of document database.
type Type string

const (
	// TypeMongoDB represents a MongoDB database.
	TypeMongoDB Type = "mongodb"
	// TypeCosmosDB represents Azure Cosmos DB through its MongoDB API.
	TypeCosmosDB Type = "cosmosdb"
	// TypeNone disables the document database.
	TypeNone Type = "none"
)
