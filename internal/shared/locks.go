package shared

import "fmt"

// BOMScanLockKey builds the redis key guarding a BOM integrity scan.
func BOMScanLockKey(scope string) string {
	if scope == "" {
		scope = "all"
	}
	return fmt.Sprintf("bom:integrity:%s:lock", scope)
}

// BOMGraphLockKey is the transaction scoped advisory lock serializing edge inserts.
const BOMGraphLockKey int64 = 0x424f4d4752415048
