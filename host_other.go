// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package host

// gpioioctl and netlink are Linux-only (GPIO v2 character device, w1
// netlink connector); nothing extra is registered on other platforms.
