package controller

// ProvisionCooldown 供外部测试包访问包内常量
const ProvisionCooldown = provisionCooldown
