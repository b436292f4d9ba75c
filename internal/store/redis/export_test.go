package redis

var (
	EncodePrincipal = encodePrincipal
	DecodePrincipal = decodePrincipal
)
