package geo

import "math"

// 纯几何计算，无状态。距离单位统一为米。

const earthRadiusMeters = 6371000

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geofence 描述一个办公点的合法打卡区域：
// 至少在一个 included 多边形内，且不在任何 excluded 多边形内。
type Geofence struct {
	Included [][]Point `json:"included"`
	Excluded [][]Point `json:"excluded"`
}

// Distance 计算两点间的大圆距离（haversine 公式）。
func Distance(a, b Point) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	deltaPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// PointInPolygon 用射线法（even-odd rule）判断点是否在多边形内。
// 少于 3 个顶点的多边形不构成区域，恒为 false。
// 自相交或退化多边形按射线法的标准结果处理，边界点不保证精确。
func PointInPolygon(point Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	x := point.Latitude
	y := point.Longitude

	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi, yi := polygon[i].Latitude, polygon[i].Longitude
		xj, yj := polygon[j].Latitude, polygon[j].Longitude

		intersect := ((yi > y) != (yj > y)) &&
			(x < (xj-xi)*(y-yi)/(yj-yi)+xi)
		if intersect {
			inside = !inside
		}
	}

	return inside
}

// InGeofence 判断点是否落在合法区域内。
// included 为空时恒为 false：只配排除区不授予任何准入。
func InGeofence(point Point, fence Geofence) bool {
	contained := false
	for _, polygon := range fence.Included {
		if PointInPolygon(point, polygon) {
			contained = true
			break
		}
	}
	if !contained {
		return false
	}

	for _, polygon := range fence.Excluded {
		if PointInPolygon(point, polygon) {
			return false
		}
	}

	return true
}

// BoundingRadius 求中心点到所有 included 顶点的最大距离，乘以 buffer
// 吸收边界上的 GPS 噪声。没有 included 多边形时返回 0。
// 只配多边形没配半径的办公点用它推导兜底半径做粗筛。
func BoundingRadius(center Point, fence Geofence, buffer float64) float64 {
	var max float64
	for _, polygon := range fence.Included {
		for _, vertex := range polygon {
			if d := Distance(center, vertex); d > max {
				max = d
			}
		}
	}

	return max * buffer
}
