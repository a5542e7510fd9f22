package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a deviceID extraction function that pulls the device identifier
// stored by DeviceAuth from the Echo context. When no device is
// authenticated, "anonymous" is returned.

import (
    "github.com/labstack/echo/v4"
)

// deviceID extracts the device identifier from the Echo context. It returns
// "anonymous" when no device is authenticated or the claim has an
// unexpected type.
func deviceID(c echo.Context) string {
    v := c.Get("device_id")
    if v == nil {
        return "anonymous"
    }
    if s, ok := v.(string); ok && s != "" {
        return s
    }
    return "anonymous"
}
