package component

import "fmt"

// Kind is the closed set of installable component kinds.
type Kind int

const (
	KindWildfly Kind = iota + 1
	KindKeycloak
	KindKeycloakWildflyAdapter
	KindMongoDB
	KindMongoDBTools
	KindPostgreSQL
	KindJDBCPostgreSQL
)

// Kinds lists every kind in display priority order.
var Kinds = []Kind{
	KindWildfly,
	KindKeycloak,
	KindKeycloakWildflyAdapter,
	KindMongoDB,
	KindMongoDBTools,
	KindPostgreSQL,
	KindJDBCPostgreSQL,
}

// ParseKind maps a configuration key to its kind.
func ParseKind(id string) (Kind, bool) {
	for _, k := range Kinds {
		if k.ID() == id {
			return k, true
		}
	}
	return 0, false
}

// ID is the configuration key of the kind.
func (k Kind) ID() string {
	switch k {
	case KindWildfly:
		return "wildfly"
	case KindKeycloak:
		return "keycloak"
	case KindKeycloakWildflyAdapter:
		return "keycloakWildflyAdapter"
	case KindMongoDB:
		return "mongodb"
	case KindMongoDBTools:
		return "mongodbDbTools"
	case KindPostgreSQL:
		return "postgresql"
	case KindJDBCPostgreSQL:
		return "jdbcPostgresql"
	default:
		panic(fmt.Sprintf("unknown component kind %d", int(k)))
	}
}

// Name is the display name of the kind.
func (k Kind) Name() string {
	switch k {
	case KindWildfly:
		return "Wildfly"
	case KindKeycloak:
		return "Keycloak"
	case KindKeycloakWildflyAdapter:
		return "Keycloak Wildfly Adapter"
	case KindMongoDB:
		return "MongoDB"
	case KindMongoDBTools:
		return "MongoDB DB Tools"
	case KindPostgreSQL:
		return "PostgreSQL"
	case KindJDBCPostgreSQL:
		return "JDBC PostgreSQL"
	default:
		panic(fmt.Sprintf("unknown component kind %d", int(k)))
	}
}

func (k Kind) String() string {
	return k.ID()
}
