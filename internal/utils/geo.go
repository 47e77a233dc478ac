package utils

func IsValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func IsWithinRadius(centerLat, centerLng, pointLat, pointLng, radiusKM float64) bool {
	return CalculateDistance(centerLat, centerLng, pointLat, pointLng) <= radiusKM
}
