package geo

import "math"

// EarthRadiusKm содержит средний радиус Земли в километрах.
const EarthRadiusKm = 6371.0

// Point представляет географическую точку в градусах.
type Point struct {
	Lat float64
	Lon float64
}

// Distance вычисляет расстояние между двумя координатами в километрах
// по формуле гаверсинусов.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusKm * c
}

// DistanceTo возвращает расстояние до точки q в километрах.
func (p Point) DistanceTo(q Point) float64 {
	return Distance(p.Lat, p.Lon, q.Lat, q.Lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
